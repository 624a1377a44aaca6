package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	StorefrontServiceName = "storefront.v1.StorefrontService"
	// JSONCodecName is the content subtype clients select with
	// grpc.CallContentSubtype.
	JSONCodecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the domain types as JSON, so the service needs no
// generated protobuf code.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

type ListItemsRequest struct {
	Filter map[string]string `json:"filter"`
}

type ItemDetailRequest struct {
	ItemID string `json:"item_id"`
}

type CreatorSalesRequest struct {
	CreatorID string `json:"creator_id"`
}

type OrderStatisticsRequest struct {
	Scope map[string]string `json:"scope"`
}

// StorefrontServer is the gRPC surface of the catalog and sales services.
type StorefrontServer interface {
	ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error)
	ItemDetail(ctx context.Context, req *ItemDetailRequest) (*domain.ItemDetail, error)
	CreatorSalesSummary(ctx context.Context, req *CreatorSalesRequest) (*domain.CreatorSalesSummary, error)
	OrderStatistics(ctx context.Context, req *OrderStatisticsRequest) (*domain.OrderStatistics, error)
}

type GRPCHandler struct {
	catalog *service.CatalogService
	sales   *service.SalesService
	logger  *slog.Logger
}

func NewGRPCHandler(catalog *service.CatalogService, sales *service.SalesService, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{catalog: catalog, sales: sales, logger: logger}
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	filter, err := domain.ParseItemFilter(toValues(req.Filter))
	if err != nil {
		return nil, h.toStatus(err)
	}

	items, err := h.catalog.ListItems(ctx, filter)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListItemsResponse{Items: items, Count: len(items)}, nil
}

func (h *GRPCHandler) ItemDetail(ctx context.Context, req *ItemDetailRequest) (*domain.ItemDetail, error) {
	detail, err := h.catalog.ItemDetail(ctx, req.ItemID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &detail, nil
}

func (h *GRPCHandler) CreatorSalesSummary(ctx context.Context, req *CreatorSalesRequest) (*domain.CreatorSalesSummary, error) {
	summary, err := h.sales.CreatorSalesSummary(ctx, req.CreatorID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &summary, nil
}

func (h *GRPCHandler) OrderStatistics(ctx context.Context, req *OrderStatisticsRequest) (*domain.OrderStatistics, error) {
	scope, err := domain.ParseOrderScope(toValues(req.Scope))
	if err != nil {
		return nil, h.toStatus(err)
	}

	stats, err := h.sales.OrderStatistics(ctx, scope)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &stats, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	var fe *domain.FilterError
	switch {
	case errors.As(err, &fe):
		return status.Error(codes.InvalidArgument, fe.Error())
	case errors.Is(err, domain.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, "invalid filter")
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		h.logger.Error("grpc request failed", slog.Any("error", err))
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	}
}

// RegisterStorefrontServer attaches srv to a gRPC server.
func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&storefrontServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StorefrontServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + StorefrontServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(StorefrontServer), ctx, req.(*Req))
			})
		},
	}
}

var storefrontServiceDesc = grpc.ServiceDesc{
	ServiceName: StorefrontServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListItems", StorefrontServer.ListItems),
		unaryHandler("ItemDetail", StorefrontServer.ItemDetail),
		unaryHandler("CreatorSalesSummary", StorefrontServer.CreatorSalesSummary),
		unaryHandler("OrderStatistics", StorefrontServer.OrderStatistics),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/storefront.json",
}

func toValues(m map[string]string) map[string][]string {
	values := make(map[string][]string, len(m))
	for k, v := range m {
		values[k] = []string{v}
	}
	return values
}
