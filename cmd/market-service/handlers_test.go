package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	art "github.com/MikeMC777/arte-market/internal/artwork"
	"github.com/MikeMC777/arte-market/internal/httpx"
	msg "github.com/MikeMC777/arte-market/internal/message"
	ord "github.com/MikeMC777/arte-market/internal/order"
	"github.com/MikeMC777/arte-market/internal/payment"
	prof "github.com/MikeMC777/arte-market/internal/profile"
)

//
// ---------- STUBS & FAKES ----------
//

// stubArtworkRepo implements art.Repository in memory.
type stubArtworkRepo struct {
	items map[string]*art.Artwork
}

func newStubArtworkRepo() *stubArtworkRepo {
	return &stubArtworkRepo{items: make(map[string]*art.Artwork)}
}

func (s *stubArtworkRepo) Create(ctx context.Context, a *art.Artwork) error {
	cp := *a
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[a.ID] = &cp
	return nil
}

func (s *stubArtworkRepo) GetByID(ctx context.Context, id string) (*art.Artwork, error) {
	a, ok := s.items[id]
	if !ok {
		return nil, art.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubArtworkRepo) List(ctx context.Context, q art.Query) ([]art.Artwork, error) {
	out := make([]art.Artwork, 0, len(s.items))
	for _, a := range s.items {
		if a.Status != art.StatusApproved {
			continue
		}
		if q.Style != "" && a.Style != q.Style {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *stubArtworkRepo) ListByArtist(ctx context.Context, artistID string) ([]art.Artwork, error) {
	out := make([]art.Artwork, 0)
	for _, a := range s.items {
		if a.ArtistID == artistID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubArtworkRepo) MarkSold(ctx context.Context, id string) error {
	a, ok := s.items[id]
	if !ok {
		return art.ErrNotFound
	}
	if a.Sold {
		return art.ErrAlreadySold
	}
	a.Sold = true
	return nil
}

// stubMessageRepo implements msg.Repository in memory.
type stubMessageRepo struct {
	created   []*msg.Message
	inboxRows []msg.InboxRow
}

func (s *stubMessageRepo) Create(ctx context.Context, m *msg.Message) error {
	cp := *m
	cp.CreatedAt = time.Now().UTC()
	s.created = append(s.created, &cp)
	return nil
}

func (s *stubMessageRepo) ListThread(ctx context.Context, artworkID, a, b string) ([]msg.Message, error) {
	var out []msg.Message
	for _, m := range s.created {
		if m.ArtworkID != artworkID {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) ListForUser(ctx context.Context, userID string) ([]msg.InboxRow, error) {
	return s.inboxRows, nil
}

// stubProfileRepo implements prof.Repository in memory.
type stubProfileRepo struct {
	items map[string]*prof.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{items: make(map[string]*prof.Profile)}
}

func (s *stubProfileRepo) Create(ctx context.Context, p *prof.Profile) error {
	if _, ok := s.items[p.ID]; ok {
		return prof.ErrAlreadyExist
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProfileRepo) GetByID(ctx context.Context, id string) (*prof.Profile, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prof.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// stubOrderRepo implements ord.Repository in memory, deduping by session id.
type stubOrderRepo struct {
	bySession map[string]*ord.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{bySession: make(map[string]*ord.Order)}
}

func (s *stubOrderRepo) Create(ctx context.Context, o *ord.Order) (bool, error) {
	if _, ok := s.bySession[o.CheckoutSessionID]; ok {
		return false, nil
	}
	cp := *o
	cp.CreatedAt = time.Now().UTC()
	s.bySession[o.CheckoutSessionID] = &cp
	return true, nil
}

func (s *stubOrderRepo) GetBySession(ctx context.Context, sessionID string) (*ord.Order, error) {
	o, ok := s.bySession[sessionID]
	if !ok {
		return nil, ord.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) ListByArtist(ctx context.Context, artistID string) ([]ord.ArtistOrder, error) {
	return nil, nil
}

// newGatewayServer serves POST /v1/checkout/sessions and records the last
// session request, like the product fake in the order-service tests.
func newGatewayServer(t *testing.T, fail bool) (*httptest.Server, *payment.SessionRequest) {
	t.Helper()
	last := &payment.SessionRequest{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		if fail {
			http.Error(w, `{"error":"amount too small"}`, http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(last); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payment.Session{
			ID:  "cs_test_123",
			URL: "https://pay.example.com/cs_test_123",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, last
}

const testStorageBase = "https://storage.example.com/object/public/artwork"

type testEnv struct {
	arts     *stubArtworkRepo
	profiles *stubProfileRepo
	messages *stubMessageRepo
	orders   *stubOrderRepo
	gateway  *payment.SessionRequest
	router   *gin.Engine
}

func newTestEnv(t *testing.T, gatewayFails bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		arts:     newStubArtworkRepo(),
		profiles: newStubProfileRepo(),
		messages: &stubMessageRepo{},
		orders:   newStubOrderRepo(),
	}

	srv, last := newGatewayServer(t, gatewayFails)
	env.gateway = last
	client := payment.NewClient(srv.URL, "sk_test")
	cache := art.NewCache(nil) // no redis in tests; every lookup is a miss

	r := gin.New()
	r.Use(httpx.Identity())
	r.GET("/api/artworks", listArtworksHandler(env.arts, cache, testStorageBase))
	r.GET("/api/artworks/:id", getArtworkHandler(env.arts, testStorageBase))
	r.POST("/api/artworks", httpx.RequireUser(), createArtworkHandler(env.arts, cache))
	r.POST("/api/artworks/:id/offers", httpx.RequireUser(), offerHandler(env.arts, env.messages))
	r.GET("/api/inbox", httpx.RequireUser(), inboxHandler(env.messages))
	r.POST("/api/checkout", checkoutHandler(env.arts, env.profiles, client))
	env.router = r
	return env
}

func (e *testEnv) addArtwork(a art.Artwork) string {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = art.StatusApproved
	}
	if a.ShippingCost == "" {
		a.ShippingCost = "0.00"
	}
	_ = e.arts.Create(context.Background(), &a)
	return a.ID
}

func doJSON(r *gin.Engine, method, path, body, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestCheckout_AmountComesFromStore(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "Blue Interior", Price: "100.00", ShippingCost: "10.00", ArtistID: uuid.NewString()})

	w := doJSON(env.router, http.MethodPost, "/api/checkout", fmt.Sprintf(`{"artwork_id":%q}`, id), "")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	// 110.00 total => 11000 minor units, regardless of anything the client sends
	if env.gateway.AmountMinor != 11000 {
		t.Fatalf("amount_minor=%d, esperado=11000", env.gateway.AmountMinor)
	}
	if env.gateway.Currency != "gbp" {
		t.Fatalf("currency=%q", env.gateway.Currency)
	}
	if env.gateway.Metadata["artwork_id"] != id {
		t.Fatalf("metadata artwork_id=%q, esperado=%q", env.gateway.Metadata["artwork_id"], id)
	}

	var got struct {
		SessionID string `json:"session_id"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if got.SessionID != "cs_test_123" || got.URL == "" {
		t.Fatalf("respuesta inesperada: %+v", got)
	}
}

func TestCheckout_RedirectURLsFollowOrigin(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "X", Price: "10.00", ArtistID: uuid.NewString()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(fmt.Sprintf(`{"artwork_id":%q}`, id)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://arte.example.com")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if env.gateway.SuccessURL != "https://arte.example.com/success" {
		t.Fatalf("success_url=%q", env.gateway.SuccessURL)
	}
	if env.gateway.CancelURL != "https://arte.example.com/artwork/gallery" {
		t.Fatalf("cancel_url=%q", env.gateway.CancelURL)
	}
}

func TestCheckout_MissingArtworkID(t *testing.T) {
	env := newTestEnv(t, false)

	for _, body := range []string{`{}`, `{"artwork_id":""}`, `not json`} {
		w := doJSON(env.router, http.MethodPost, "/api/checkout", body, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body=%q: esperaba 400, got %d", body, w.Code)
		}
	}
}

func TestCheckout_UnknownArtwork(t *testing.T) {
	env := newTestEnv(t, false)

	w := doJSON(env.router, http.MethodPost, "/api/checkout", fmt.Sprintf(`{"artwork_id":%q}`, uuid.NewString()), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCheckout_SoldOrUnapprovedArtwork(t *testing.T) {
	env := newTestEnv(t, false)
	soldID := env.addArtwork(art.Artwork{Title: "Sold", Price: "10.00", Sold: true, ArtistID: uuid.NewString()})
	pendingID := env.addArtwork(art.Artwork{Title: "Pending", Price: "10.00", Status: art.StatusPending, ArtistID: uuid.NewString()})

	for _, id := range []string{soldID, pendingID} {
		w := doJSON(env.router, http.MethodPost, "/api/checkout", fmt.Sprintf(`{"artwork_id":%q}`, id), "")
		if w.Code != http.StatusConflict {
			t.Fatalf("id=%s: esperaba 409, got %d body=%s", id, w.Code, w.Body.String())
		}
	}
	if env.gateway.AmountMinor != 0 {
		t.Fatalf("el gateway no debió ser llamado")
	}
}

func TestCheckout_GatewayErrorPassedThrough(t *testing.T) {
	env := newTestEnv(t, true)
	id := env.addArtwork(art.Artwork{Title: "X", Price: "10.00", ArtistID: uuid.NewString()})

	w := doJSON(env.router, http.MethodPost, "/api/checkout", fmt.Sprintf(`{"artwork_id":%q}`, id), "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("esperaba 500, got %d", w.Code)
	}
	var got struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Error != "gateway: amount too small" {
		t.Fatalf("error=%q, esperaba el mensaje del gateway", got.Error)
	}
}

func TestOffer_BelowMinimumRejectedWithoutWrite(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "Blue Interior", Price: "100.00", ArtistID: uuid.NewString()})

	// 59.99 < 60% of 100
	w := doJSON(env.router, http.MethodPost, "/api/artworks/"+id+"/offers", `{"amount":59.99}`, uuid.NewString())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
	}
	if len(env.messages.created) != 0 {
		t.Fatalf("no debió escribirse ningún mensaje")
	}
}

func TestOffer_ExactlySixtyPercentAccepted(t *testing.T) {
	env := newTestEnv(t, false)
	artistID := uuid.NewString()
	buyerID := uuid.NewString()
	id := env.addArtwork(art.Artwork{Title: "Blue Interior", Price: "100.00", ArtistID: artistID})

	w := doJSON(env.router, http.MethodPost, "/api/artworks/"+id+"/offers", `{"amount":60}`, buyerID)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(env.messages.created) != 1 {
		t.Fatalf("mensajes=%d, esperado=1", len(env.messages.created))
	}
	m := env.messages.created[0]
	if m.SenderID != buyerID || m.ReceiverID != artistID || m.ArtworkID != id {
		t.Fatalf("mensaje mal dirigido: %+v", m)
	}
	want := `Hi, I'd like to offer £60.00 for "Blue Interior".`
	if m.Content != want {
		t.Fatalf("content=%q, esperado=%q", m.Content, want)
	}
}

func TestOffer_NonNumericAmount(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "X", Price: "100.00", ArtistID: uuid.NewString()})

	w := doJSON(env.router, http.MethodPost, "/api/artworks/"+id+"/offers", `{"amount":"abc"}`, uuid.NewString())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d", w.Code)
	}
}

func TestOffer_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "X", Price: "100.00", ArtistID: uuid.NewString()})

	w := doJSON(env.router, http.MethodPost, "/api/artworks/"+id+"/offers", `{"amount":80}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("esperaba 401, got %d", w.Code)
	}
	if len(env.messages.created) != 0 {
		t.Fatalf("no debió escribirse ningún mensaje")
	}
}

func TestInbox_ReturnsGroupedThreads(t *testing.T) {
	env := newTestEnv(t, false)
	uid := "buyer"
	now := time.Now().UTC()

	mk := func(id, content string, at time.Time) msg.InboxRow {
		return msg.InboxRow{
			Message: msg.Message{
				ID: id, ArtworkID: "art1", SenderID: uid, ReceiverID: "artist",
				Content: content, CreatedAt: at,
			},
			ArtworkTitle: "Blue Interior", ArtistID: "artist",
			SenderUsername: "buyer_u", ReceiverUsername: "artist_u",
		}
	}
	// newest first, same (artwork, counterpart) pair
	env.messages.inboxRows = []msg.InboxRow{
		mk("m2", "latest", now),
		mk("m1", "older", now.Add(-time.Hour)),
	}

	w := doJSON(env.router, http.MethodGet, "/api/inbox", "", uid)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Threads []msg.Thread `json:"threads"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if len(got.Threads) != 1 {
		t.Fatalf("threads=%d, esperado=1", len(got.Threads))
	}
	th := got.Threads[0]
	if th.LatestMessage != "latest" || th.OtherUsername != "artist_u" || th.ArtworkTitle != "Blue Interior" {
		t.Fatalf("thread inesperado: %+v", th)
	}
}

func TestCreateArtwork_ForcesPendingAndUnsold(t *testing.T) {
	env := newTestEnv(t, false)
	artistID := uuid.NewString()

	body := `{"title":"New Piece","description":"oil","price":"80","shipping_cost":"5","style":"abstract","image_path":"artworks/1.jpg"}`
	w := doJSON(env.router, http.MethodPost, "/api/artworks", body, artistID)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got art.Artwork
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json inválido: %v", err)
	}
	if got.Status != art.StatusPending || got.Sold {
		t.Fatalf("la obra debe entrar pending y sin vender: %+v", got)
	}
	if got.ArtistID != artistID || got.Price != "80.00" {
		t.Fatalf("obra inesperada: %+v", got)
	}
}

func TestCreateArtwork_Invalid(t *testing.T) {
	env := newTestEnv(t, false)
	uid := uuid.NewString()

	cases := []string{
		`{"description":"sin título","price":"10","image_path":"a.jpg"}`,
		`{"title":"X","image_path":"a.jpg"}`,
		`{"title":"X","price":"-5","image_path":"a.jpg"}`,
		`{"title":"X","price":"10"}`,
	}
	for _, body := range cases {
		w := doJSON(env.router, http.MethodPost, "/api/artworks", body, uid)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body=%s: esperaba 400, got %d", body, w.Code)
		}
	}
}

func TestGetArtwork_ComposesImageURL(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.addArtwork(art.Artwork{Title: "X", Price: "10.00", ImagePath: "artworks/7.jpg", ArtistID: uuid.NewString()})

	w := doJSON(env.router, http.MethodGet, "/api/artworks/"+id, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got art.Artwork
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ImageURL != testStorageBase+"/artworks/7.jpg" {
		t.Fatalf("image_url=%q", got.ImageURL)
	}
}

func TestGetArtwork_NotFound(t *testing.T) {
	env := newTestEnv(t, false)

	w := doJSON(env.router, http.MethodGet, "/api/artworks/"+uuid.NewString(), "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("esperaba 404, got %d", w.Code)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}
