package store

import "errors"

var (
	// ErrStoreNotFound は店舗が存在しない場合に返却されます。
	ErrStoreNotFound = errors.New("store: not found")
	// ErrNameAlreadyExists は店舗名重複時に返却されます。
	ErrNameAlreadyExists = errors.New("store: name already exists")
	// ErrInvalidName は店舗名が不正な場合に返却されます。
	ErrInvalidName = errors.New("store: invalid name")
	// ErrInvalidPhone は電話番号が 10 桁の数字でない場合に返却されます。
	ErrInvalidPhone = errors.New("store: phone must be 10 digits")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("store: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("store: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("store: invalid page token")
)
