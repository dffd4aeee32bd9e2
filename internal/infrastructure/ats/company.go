package ats

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ats-sync/internal/pkg/logger"
)

// CompanyCache maps a company name to the External ATS company id.
type CompanyCache interface {
	GetCompanyID(ctx context.Context, name string) (int64, bool)
	SetCompanyID(ctx context.Context, name string, id int64)
}

type CompanyInfo struct {
	Name    string
	Email   string
	Phone   string
	State   string
	Country string
}

// CompanyResolver ensures a company exists in the External ATS and returns
// its id. Lookups are by exact name; resolved ids are cached.
type CompanyResolver struct {
	client *Client
	cache  CompanyCache
	logger *zap.SugaredLogger
}

func NewCompanyResolver(client *Client, cache CompanyCache, log *zap.SugaredLogger) *CompanyResolver {
	return &CompanyResolver{client: client, cache: cache, logger: logger.OrNop(log)}
}

func (r *CompanyResolver) Ensure(ctx context.Context, info CompanyInfo) (int64, error) {
	if r == nil || r.client == nil {
		return 0, fmt.Errorf("%w: company resolver", ErrConfiguration)
	}
	if !r.client.Enabled() {
		return 0, ErrDisabled
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		return 0, &ValidationError{Field: "company name", Reason: "empty"}
	}

	if r.cache != nil {
		if id, ok := r.cache.GetCompanyID(ctx, name); ok {
			return id, nil
		}
	}

	found, err := r.client.SearchCompanies(ctx, name)
	if err != nil {
		return 0, err
	}

	var id int64
	if len(found) > 0 {
		id, err = parseCompanyID(found[0].Identifier())
		if err != nil {
			return 0, &RemoteError{Op: "searchCompany", Err: err}
		}
		r.logger.Debugw("ats company found", "company", name, "company_id", id)
	} else {
		id, err = r.client.CreateCompany(ctx, CompanyPayload{
			Name:    name,
			Email:   strings.TrimSpace(info.Email),
			Phone:   strings.TrimSpace(info.Phone),
			State:   strings.TrimSpace(info.State),
			Country: strings.TrimSpace(info.Country),
		})
		if err != nil {
			return 0, err
		}
		r.logger.Infow("ats company created", "company", name, "company_id", id)
	}

	if r.cache != nil {
		r.cache.SetCompanyID(ctx, name, id)
	}
	return id, nil
}

func (c *Client) SearchCompanies(ctx context.Context, name string) ([]CompanyRecord, error) {
	body, err := c.postJSON(ctx, "searchCompany", "/searchCompany", map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	return decodeList[CompanyRecord]("searchCompany", body)
}

func (c *Client) CreateCompany(ctx context.Context, in CompanyPayload) (int64, error) {
	body, err := c.postJSON(ctx, "createCompany", "/createCompany", in)
	if err != nil {
		return 0, err
	}
	raw, err := decodeID("createCompany", body, "companyid")
	if err != nil {
		return 0, err
	}
	id, err := parseCompanyID(raw)
	if err != nil {
		return 0, &RemoteError{Op: "createCompany", Err: err}
	}
	return id, nil
}

func parseCompanyID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrNoID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("company id %q is not numeric", raw)
	}
	return id, nil
}
