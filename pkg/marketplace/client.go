package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
)

// TokenSource resolves the bearer token for a request. Returning an empty
// string sends the request without an Authorization header.
type TokenSource func(ctx context.Context) string

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	BaseURL     string
	Token       string
	TokenSource TokenSource
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// HTTPClient talks to the marketplace backend over REST.
type HTTPClient struct {
	baseURL string
	token   TokenSource
	client  *http.Client
	log     *slog.Logger
}

// NewHTTPClient builds a client for the configured backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("marketplace: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("marketplace: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	token := cfg.TokenSource
	if token == nil {
		static := cfg.Token
		token = func(context.Context) string { return static }
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		client:  httpClient,
		log:     log.With(sl.Module("marketplace.http")),
	}, nil
}

func (c *HTTPClient) AdminUsers(ctx context.Context, page, limit int) (UsersPage, error) {
	body, err := c.get(ctx, "/admin/users", page, limit)
	if err != nil {
		return UsersPage{}, err
	}
	env, err := decodeList(body, "users", page, limit)
	if err != nil {
		return UsersPage{}, fetchFailed(err, "/admin/users")
	}
	items, err := decodeItems[User](env)
	if err != nil {
		return UsersPage{}, fetchFailed(err, "/admin/users")
	}
	return UsersPage{
		Page:        Page[User]{Items: items, Pagination: env.Pagination},
		SellerCount: env.SellerCount,
		BuyerCount:  env.BuyerCount,
	}, nil
}

func (c *HTTPClient) AdminReviews(ctx context.Context, page, limit int) (Page[Review], error) {
	return list[Review](ctx, c, "/admin/reviews", "reviews", page, limit)
}

func (c *HTTPClient) AdminOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return list[Order](ctx, c, "/admin/orders", "orders", page, limit)
}

func (c *HTTPClient) AdminDrivers(ctx context.Context, page, limit int) (Page[Driver], error) {
	return list[Driver](ctx, c, "/admin/drivers", "drivers", page, limit)
}

func (c *HTTPClient) CreateDriver(ctx context.Context, input CreateDriverInput) (Driver, error) {
	var out Driver
	err := c.write(ctx, http.MethodPost, "/admin/drivers", input, &out)
	return out, err
}

func (c *HTTPClient) AdminReturns(ctx context.Context, page, limit int) (Page[Return], error) {
	return list[Return](ctx, c, "/admin/returns", "returns", page, limit)
}

func (c *HTTPClient) ClassifyReturnFault(ctx context.Context, id string, fault status.ReturnFault, note string) (Return, error) {
	payload := map[string]any{"fault": fault, "note": note}
	var out Return
	err := c.write(ctx, http.MethodPut, "/admin/returns/"+url.PathEscape(id)+"/fault", payload, &out)
	return out, err
}

func (c *HTTPClient) AdminPayouts(ctx context.Context, page, limit int) (Page[Payout], error) {
	return list[Payout](ctx, c, "/admin/payouts", "payouts", page, limit)
}

func (c *HTTPClient) ProcessPayout(ctx context.Context, id string) (Payout, error) {
	var out Payout
	err := c.write(ctx, http.MethodPost, "/admin/payouts/"+url.PathEscape(id)+"/process", nil, &out)
	return out, err
}

func (c *HTTPClient) MasterProducts(ctx context.Context, page, limit int) (Page[MasterProduct], error) {
	return list[MasterProduct](ctx, c, "/admin/master-products", "products", page, limit)
}

func (c *HTTPClient) BusinessIntelligence(ctx context.Context) (BusinessIntelligence, error) {
	const path = "/admin/business-intelligence"
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return BusinessIntelligence{}, err
	}
	var out BusinessIntelligence
	if err := decodeObject(body, &out); err != nil {
		return BusinessIntelligence{}, fetchFailed(err, path)
	}
	return out, nil
}

func (c *HTTPClient) ModerateReview(ctx context.Context, id string, decision status.ReviewStatus) (Review, error) {
	var out Review
	err := c.write(ctx, http.MethodPut, "/admin/reviews/"+url.PathEscape(id)+"/status", map[string]any{"status": decision}, &out)
	return out, err
}

func (c *HTTPClient) SellerOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return list[Order](ctx, c, "/seller/orders", "orders", page, limit)
}

func (c *HTTPClient) AcceptOrder(ctx context.Context, id string) (Order, error) {
	var out Order
	err := c.write(ctx, http.MethodPut, "/seller/orders/"+url.PathEscape(id)+"/accept", nil, &out)
	return out, err
}

func (c *HTTPClient) RejectOrder(ctx context.Context, id, reason string) (Order, error) {
	var out Order
	err := c.write(ctx, http.MethodPut, "/seller/orders/"+url.PathEscape(id)+"/reject", map[string]any{"reason": reason}, &out)
	return out, err
}

func (c *HTTPClient) SellerProducts(ctx context.Context, page, limit int) (Page[SellerProduct], error) {
	return list[SellerProduct](ctx, c, "/seller/products", "products", page, limit)
}

func (c *HTTPClient) SellerPayouts(ctx context.Context, page, limit int) (Page[Payout], error) {
	return list[Payout](ctx, c, "/seller/payouts", "payouts", page, limit)
}

func (c *HTTPClient) SellerCoupons(ctx context.Context, page, limit int) (Page[Coupon], error) {
	return list[Coupon](ctx, c, "/seller/coupons", "coupons", page, limit)
}

func (c *HTTPClient) CreateCoupon(ctx context.Context, input CreateCouponInput) (Coupon, error) {
	var out Coupon
	err := c.write(ctx, http.MethodPost, "/seller/coupons", input, &out)
	return out, err
}

func (c *HTTPClient) LoanApplications(ctx context.Context, page, limit int) (Page[LoanApplication], error) {
	return list[LoanApplication](ctx, c, "/seller/loans", "loans", page, limit)
}

func (c *HTTPClient) ApplyForLoan(ctx context.Context, input LoanApplicationInput) (LoanApplication, error) {
	var out LoanApplication
	err := c.write(ctx, http.MethodPost, "/seller/loans", input, &out)
	return out, err
}

func (c *HTTPClient) BuyerOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return list[Order](ctx, c, "/buyer/orders", "orders", page, limit)
}

func (c *HTTPClient) BuyerReturns(ctx context.Context, page, limit int) (Page[Return], error) {
	return list[Return](ctx, c, "/buyer/returns", "returns", page, limit)
}

func (c *HTTPClient) RequestReturn(ctx context.Context, input RequestReturnInput) (Return, error) {
	var out Return
	err := c.write(ctx, http.MethodPost, "/buyer/returns", input, &out)
	return out, err
}

func list[T any](ctx context.Context, c *HTTPClient, path, key string, page, limit int) (Page[T], error) {
	body, err := c.get(ctx, path, page, limit)
	if err != nil {
		return Page[T]{}, err
	}
	env, err := decodeList(body, key, page, limit)
	if err != nil {
		return Page[T]{}, fetchFailed(err, path)
	}
	items, err := decodeItems[T](env)
	if err != nil {
		return Page[T]{}, fetchFailed(err, path)
	}
	return Page[T]{Items: items, Pagination: env.Pagination}, nil
}

func decodeItems[T any](env listEnvelope) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(env.Items, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, page, limit int) ([]byte, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.do(ctx, http.MethodGet, path+"?"+query.Encode(), nil)
}

func (c *HTTPClient) write(ctx context.Context, method, path string, payload any, target any) error {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	result, err := decodeWrite(body, target)
	if err != nil {
		return fetchFailed(err, path)
	}
	if !result.Success {
		return writeRejected(path, result.Message)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marketplace: encode payload: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fetchFailed(err, path)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", slog.String("method", method), slog.String("path", path), sl.Err(err))
		return nil, fetchFailed(err, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchFailed(err, path)
	}
	c.log.Debug("backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)
	if resp.StatusCode >= 300 {
		return nil, remoteFailed(resp.StatusCode, path, remoteMessage(body))
	}
	return body, nil
}

// maxRemoteMessage caps, in bytes, how much of a non-JSON error body is kept.
const maxRemoteMessage = 200

func remoteMessage(body []byte) string {
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &msg); err == nil {
		if msg.Message != "" {
			return msg.Message
		}
		if msg.Error != "" {
			return msg.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxRemoteMessage {
		cut := maxRemoteMessage
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
