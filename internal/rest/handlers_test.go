package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codMarket/domain"
	"codMarket/internal/middleware"
	"codMarket/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	placed  domain.PlaceOrderInput
	err     error
	order   domain.Order
	listFor *uint
}

func (s *stubOrders) PlaceOrder(_ context.Context, in domain.PlaceOrderInput) (domain.Order, error) {
	s.placed = in
	if s.err != nil {
		return domain.Order{}, s.err
	}
	return domain.Order{ID: 31}, nil
}

func (s *stubOrders) UpdateOrderStatus(_ context.Context, id uint, status domain.OrderStatus) (domain.Order, error) {
	return domain.Order{ID: id, Status: status}, s.err
}

func (s *stubOrders) GetOrder(context.Context, uint) (domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) ListOrders(_ context.Context, userID *uint) ([]domain.Order, error) {
	s.listFor = userID
	return []domain.Order{}, nil
}

type stubReturns struct {
	created domain.CreateReturnInput
	filter  domain.ReturnFilter
	err     error
	ret     domain.Return
}

func (s *stubReturns) CreateReturn(_ context.Context, in domain.CreateReturnInput) (domain.Return, error) {
	s.created = in
	if s.err != nil {
		return domain.Return{}, s.err
	}
	return domain.Return{ID: 5, Status: domain.ReturnStatusPending, OrderID: in.OrderID}, nil
}

func (s *stubReturns) TransitionReturn(_ context.Context, id uint, in domain.TransitionReturnInput) (domain.Return, error) {
	if s.err != nil {
		return domain.Return{}, s.err
	}
	return domain.Return{ID: id, Status: in.Status}, nil
}

func (s *stubReturns) ListReturns(_ context.Context, filter domain.ReturnFilter) ([]domain.Return, error) {
	s.filter = filter
	return nil, nil
}

func (s *stubReturns) GetReturn(context.Context, uint) (domain.Return, error) {
	return s.ret, s.err
}

type stubCustomers struct{}

func (stubCustomers) GetMyScore(_ context.Context, userID uint) (domain.CustomerScoreView, error) {
	return domain.CustomerScoreView{
		Score:   domain.CustomerScore{Phone: "0551234567", TrustScore: 100, Status: domain.ScoreStatusGood},
		History: []domain.ScoreHistory{},
	}, nil
}

type stubAdmin struct {
	in  domain.AdminActionInput
	err error
}

func (s *stubAdmin) Execute(_ context.Context, in domain.AdminActionInput) (domain.AdminActionResult, error) {
	s.in = in
	if s.err != nil {
		return domain.AdminActionResult{}, s.err
	}
	return domain.AdminActionResult{
		Message:       "Customer score reset",
		CustomerScore: &domain.CustomerScore{Phone: in.Phone, TrustScore: 100, Status: domain.ScoreStatusGood},
	}, nil
}

func (s *stubAdmin) GetCustomer(context.Context, string) (domain.CustomerScoreView, error) {
	return domain.CustomerScoreView{}, domain.NotFound("customer score")
}

type testServer struct {
	e         *echo.Echo
	orders    *stubOrders
	returns   *stubReturns
	admin     *stubAdmin
	userToken string
	adminTok  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "handler-test-secret")

	s := &testServer{
		e:       echo.New(),
		orders:  &stubOrders{},
		returns: &stubReturns{},
		admin:   &stubAdmin{},
	}
	s.e.HTTPErrorHandler = middleware.ErrorHandler

	orders := NewOrdersHandler(s.orders)
	returns := NewReturnsHandler(s.returns)
	customers := NewCustomerHandler(stubCustomers{})
	admin := NewAdminCustomerHandler(s.admin)

	auth := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	s.e.POST("/orders", orders.PlaceOrder, middleware.OptionalAuth())
	s.e.GET("/orders", orders.GetAllOrders, auth)
	s.e.GET("/orders/:id", orders.GetOrder, auth)
	s.e.POST("/returns", returns.CreateReturn, auth)
	s.e.GET("/returns", returns.ListReturns, auth)
	s.e.GET("/returns/:id", returns.GetReturn, auth)
	s.e.PATCH("/returns/:id", returns.TransitionReturn, auth, adminOnly)
	s.e.GET("/customer/score", customers.GetScore, auth)
	s.e.POST("/admin/customers/actions", admin.ExecuteAction, auth, adminOnly)
	s.e.GET("/admin/customers/:phone", admin.GetCustomer, auth, adminOnly)

	var err error
	s.userToken, err = utils.GenerateJWT("12", domain.RoleCustomer)
	require.NoError(t, err)
	s.adminTok, err = utils.GenerateJWT("1", domain.RoleAdmin)
	require.NoError(t, err)

	return s
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const validOrderBody = `{
	"items": [{"product_id": 3, "quantity": 2}],
	"guest_info": {"name": "Yacine", "phone": "0551234567", "address": "12 rue Didouche", "wilaya": "Alger", "commune": "Alger Centre"}
}`

func TestPlaceOrderHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/orders", "", validOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(31), decode(t, rec)["order_id"])
	assert.Nil(t, s.orders.placed.UserID)
	require.Len(t, s.orders.placed.Items, 1)
	assert.Equal(t, uint64(3), s.orders.placed.Items[0].ProductID)

	rec = s.do(http.MethodPost, "/orders", s.userToken, validOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, s.orders.placed.UserID)
	assert.Equal(t, uint(12), *s.orders.placed.UserID)
}

func TestPlaceOrderHandler_ValidationMessages(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/orders", "", `{"items":[{"product_id":3,"quantity":0}],"guest_info":{"name":"","phone":"12"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "validation failed", body["error"])
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	joined := ""
	for _, e := range errs {
		joined += e.(string) + "\n"
	}
	assert.Contains(t, joined, "items[0].quantity must be at least 1")
	assert.Contains(t, joined, "guest_info.name is required")
	assert.Contains(t, joined, "guest_info.phone must match")

	rec = s.do(http.MethodPost, "/orders", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderHandler_Blacklisted(t *testing.T) {
	s := newTestServer(t)
	s.orders.err = &domain.PolicyError{Status: domain.ScoreStatusBlacklisted}

	rec := s.do(http.MethodPost, "/orders", "", validOrderBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "account suspended, contact support", body["error"])
	assert.Equal(t, "BLACKLISTED", body["status"])
}

func TestListOrdersHandler_ScopesCustomers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/orders", s.userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.orders.listFor)
	assert.Equal(t, uint(12), *s.orders.listFor)

	rec = s.do(http.MethodGet, "/orders", s.adminTok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s.orders.listFor)
}

func TestGetOrderHandler_Ownership(t *testing.T) {
	s := newTestServer(t)
	other := uint(99)
	s.orders.order = domain.Order{ID: 4, UserID: &other}

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/orders/4", s.userToken, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/orders/4", s.adminTok, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/orders/abc", s.adminTok, "").Code)
}

func TestCreateReturnHandler(t *testing.T) {
	s := newTestServer(t)
	body := `{"order_id": 8, "product_id": 3, "customer_phone": "0551234567", "reason": "DAMAGED", "images": ["a.jpg"]}`

	rec := s.do(http.MethodPost, "/returns", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/returns", s.userToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PENDING", decode(t, rec)["status"])
	require.NotNil(t, s.returns.created.UserID)
	assert.Equal(t, uint(12), *s.returns.created.UserID)
	assert.Equal(t, domain.ReasonDamaged, s.returns.created.Reason)
}

func TestCreateReturnHandler_ErrorBodies(t *testing.T) {
	s := newTestServer(t)
	body := `{"order_id": 8, "product_id": 3, "customer_phone": "0551234567", "reason": "DAMAGED"}`

	s.returns.err = &domain.ConflictError{Message: "a return for this product is already in progress", ExistingReturnID: 17, ExistingStatus: domain.ReturnStatusApproved}
	rec := s.do(http.MethodPost, "/returns", s.userToken, body)
	require.Equal(t, http.StatusConflict, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, float64(17), got["existing_return_id"])
	assert.Equal(t, "APPROVED", got["existing_status"])

	s.returns.err = domain.Forbidden("order does not belong to you")
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/returns", s.userToken, body).Code)

	s.returns.err = domain.NotFound("order")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/returns", s.userToken, body).Code)

	s.returns.err = domain.NewValidationError("reason must be one of ...", "customer_phone must match ...")
	rec = s.do(http.MethodPost, "/returns", s.userToken, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode(t, rec)["errors"], 2)
}

func TestListReturnsHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/returns?status=PENDING&user_id=40", s.userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.NotNil(t, s.returns.filter.UserID)
	assert.Equal(t, uint(12), *s.returns.filter.UserID)
	assert.Equal(t, domain.ReturnStatusPending, s.returns.filter.Status)

	rec = s.do(http.MethodGet, "/returns?phone=0551234567&user_id=40", s.adminTok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.returns.filter.UserID)
	assert.Equal(t, uint(40), *s.returns.filter.UserID)
	assert.Equal(t, "0551234567", s.returns.filter.Phone)

	rec = s.do(http.MethodGet, "/returns?user_id=x", s.adminTok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReturnHandler_Ownership(t *testing.T) {
	s := newTestServer(t)
	owner := uint(12)
	s.returns.ret = domain.Return{ID: 5, UserID: &owner}

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/returns/5", s.userToken, "").Code)

	other := uint(13)
	s.returns.ret = domain.Return{ID: 5, UserID: &other}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/returns/5", s.userToken, "").Code)
}

func TestTransitionReturnHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPatch, "/returns/5", s.userToken, `{"status":"APPROVED"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, "/returns/5", s.adminTok, `{"status":"APPROVED","admin_notes":"ok"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", decode(t, rec)["status"])

	s.returns.err = domain.NotFound("return")
	rec = s.do(http.MethodPatch, "/returns/5", s.adminTok, `{"status":"APPROVED"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerScoreHandler(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/customer/score", "", "").Code)

	rec := s.do(http.MethodGet, "/customer/score", s.userToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	score, ok := body["score"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(100), score["trust_score"])
	assert.Contains(t, body, "history")
}

func TestAdminActionHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/admin/customers/actions", s.userToken, `{"action":"RESET_BLACKLIST","phone":"0551234567"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/admin/customers/actions", s.adminTok, `{"action":"reset_blacklist","phone":"0551234567","reason":"called"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Customer score reset", body["message"])
	assert.Contains(t, body, "customerScore")
	assert.Equal(t, domain.AdminResetBlacklist, s.admin.in.Action)

	rec = s.do(http.MethodPost, "/admin/customers/actions", s.adminTok, `{"action":"DROP_TABLE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.admin.err = domain.Conflict("phone number already belongs to another account")
	rec = s.do(http.MethodPost, "/admin/customers/actions", s.adminTok, `{"action":"CHANGE_PHONE","user_id":3,"new_phone":"0661234567"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/admin/customers/0550000000", s.adminTok, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
