package handler

import (
	"context"

	"github.com/ogurasousui/store-staffing/internal/core/store"
	"google.golang.org/protobuf/types/known/structpb"
)

// StoreGrpcHandler は StoreService の gRPC 実装です。
type StoreGrpcHandler struct {
	svc store.UseCase
}

var _ StoreServiceServer = (*StoreGrpcHandler)(nil)

// NewStoreGrpcHandler は StoreGrpcHandler を生成します。
func NewStoreGrpcHandler(svc store.UseCase) *StoreGrpcHandler {
	return &StoreGrpcHandler{svc: svc}
}

// CreateStore は店舗を作成します。
func (h *StoreGrpcHandler) CreateStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)

	name, _, err := f.str("name")
	if err != nil {
		return nil, toStatusError(err)
	}
	phone, _, err := f.numericText("phone")
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateStore(ctx, store.CreateStoreInput{Name: name, Phone: phone})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"store": storeValue(created)})
}

// GetStore は店舗を取得します。
func (h *StoreGrpcHandler) GetStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	found, err := h.svc.GetStore(ctx, store.GetStoreInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"store": storeValue(found)})
}

// UpdateStore は店舗情報を更新します。
func (h *StoreGrpcHandler) UpdateStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, toStatusError(err)
	}
	f := newFields(req)

	in := store.UpdateStoreInput{ID: id}
	if in.Name, err = f.optionalString("name"); err != nil {
		return nil, toStatusError(err)
	}
	if in.Phone, err = optional(f.numericText("phone")); err != nil {
		return nil, toStatusError(err)
	}
	if in.Active, err = f.optionalBool("active"); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.svc.UpdateStore(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{"store": storeValue(updated)})
}

// ListStores は店舗の一覧を取得します。
func (h *StoreGrpcHandler) ListStores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := newFields(req)

	pageSize, _, err := f.integer("page_size")
	if err != nil {
		return nil, toStatusError(err)
	}
	pageToken, _, err := f.numericText("page_token")
	if err != nil {
		return nil, toStatusError(err)
	}
	active, err := f.optionalBool("active")
	if err != nil {
		return nil, toStatusError(err)
	}

	res, err := h.svc.ListStores(ctx, store.ListStoresInput{PageSize: pageSize, PageToken: pageToken, Active: active})
	if err != nil {
		return nil, toStatusError(err)
	}
	return response(map[string]any{
		"stores":          storeValues(res.Stores),
		"next_page_token": res.NextPageToken,
	})
}
