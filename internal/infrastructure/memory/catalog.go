package memory

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var (
	_ repository.StoreRepository   = (*StoreRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// StoreRepo tiendas en memoria.
type StoreRepo struct{ c conn }

func (r *StoreRepo) Create(_ context.Context, store *entity.Store) error {
	return r.c.do(func(st *state) error {
		for _, s := range st.stores {
			if s.Code == store.Code {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.stores[store.ID]; ok {
			return domain.ErrDuplicate
		}
		st.stores[store.ID] = *store
		return nil
	})
}

func (r *StoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	err := r.c.do(func(st *state) error {
		if s, ok := st.stores[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// ProductRepo productos en memoria. SKU único.
type ProductRepo struct{ c conn }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.c.do(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.c.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.c.do(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.c.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.IsActive = active
		st.products[id] = p
		return nil
	})
}

// UserRepo usuarios en memoria. Email único.
type UserRepo struct{ c conn }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.c.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return domain.ErrDuplicate
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.c.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.c.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}
