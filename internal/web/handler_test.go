package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bornholm/breathe/internal/account"
	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/shell"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

type fakeProvider struct {
	mutex   sync.Mutex
	user    *account.User
	err     error
	release chan struct{}
	updates []account.Changes
	calls   int

	updateErr error
}

func (p *fakeProvider) Me(ctx context.Context) (*account.User, error) {
	p.mutex.Lock()
	p.calls++
	p.mutex.Unlock()

	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		}
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.user.Clone(), p.err
}

func (p *fakeProvider) UpdateMe(ctx context.Context, changes account.Changes) (*account.User, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.updates = append(p.updates, changes)

	if p.updateErr != nil {
		return nil, p.updateErr
	}

	user := &account.User{ID: "u1"}
	if p.user != nil {
		user = p.user.Clone()
	}

	if changes.FullName != nil {
		user.FullName = *changes.FullName
	}

	if changes.Avatar != nil {
		user.Avatar = *changes.Avatar
	}

	p.user = user

	return user.Clone(), nil
}

func (p *fakeProvider) Updates() []account.Changes {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]account.Changes{}, p.updates...)
}

func (p *fakeProvider) Calls() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.calls
}

var _ account.Provider = &fakeProvider{}

type testClient struct {
	t        *testing.T
	server   *httptest.Server
	client   *http.Client
	registry *shell.Registry
}

// newTestClient starts a server and returns a client already carrying a
// shell session cookie.
func newTestClient(t *testing.T, provider account.Provider, funcs ...OptionFunc) *testClient {
	t.Helper()

	client := newAnonymousTestClient(t, provider, funcs...)

	// The first visit only hands out the shell cookie
	if status, _ := client.do(http.MethodGet, "/home", "", nil); status != http.StatusOK {
		t.Fatalf("GET /home: expected status '%v', got '%v'", http.StatusOK, status)
	}

	return client
}

// newAnonymousTestClient starts a server and returns a client without any
// session cookie.
func newAnonymousTestClient(t *testing.T, provider account.Provider, funcs ...OptionFunc) *testClient {
	t.Helper()

	registry := shell.NewRegistry(time.Minute)

	sessionStore := sessions.NewCookieStore([]byte("test-signing-key"))
	sessionStore.Options.Secure = false
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	handler := NewHandler(registry, sessionStore, provider, funcs...)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testClient{t: t, server: server, client: client, registry: registry}
}

func (c *testClient) do(method string, path string, contentType string, body io.Reader) (int, *html.Node) {
	c.t.Helper()

	req, err := http.NewRequest(method, c.server.URL+path, body)
	if err != nil {
		c.t.Fatalf("%+v", errors.WithStack(err))
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%+v", errors.WithStack(err))
	}

	defer res.Body.Close()

	doc, err := html.Parse(res.Body)
	if err != nil {
		c.t.Fatalf("%+v", errors.WithStack(err))
	}

	return res.StatusCode, doc
}

func (c *testClient) get(path string) *html.Node {
	c.t.Helper()

	status, doc := c.do(http.MethodGet, path, "", nil)
	if e, g := http.StatusOK, status; e != g {
		c.t.Fatalf("GET %s: expected status '%v', got '%v'", path, e, g)
	}

	return doc
}

func (c *testClient) post(path string) *html.Node {
	c.t.Helper()

	status, doc := c.do(http.MethodPost, path, "", nil)
	if e, g := http.StatusOK, status; e != g {
		c.t.Fatalf("POST %s: expected status '%v', got '%v'", path, e, g)
	}

	return doc
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

func findAll(n *html.Node, match func(n *html.Node) bool) []*html.Node {
	var found []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(n)

	return found
}

func findFirst(t *testing.T, n *html.Node, match func(n *html.Node) bool, description string) *html.Node {
	t.Helper()

	found := findAll(n, match)
	if len(found) == 0 {
		t.Fatalf("could not find %s", description)
	}

	return found[0]
}

func withAttr(key, value string) func(n *html.Node) bool {
	return func(n *html.Node) bool {
		v, exists := attr(n, key)
		return exists && v == value
	}
}

func text(n *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(n)

	return strings.TrimSpace(sb.String())
}

func navLinks(t *testing.T, doc *html.Node, nav string) []*html.Node {
	t.Helper()

	container := findFirst(t, doc, withAttr("data-nav", nav), fmt.Sprintf("%s navigation", nav))

	return findAll(container, func(n *html.Node) bool {
		_, exists := attr(n, "data-page")
		return n.Data == "a" && exists
	})
}

func triggerOf(t *testing.T, doc *html.Node) (string, string) {
	t.Helper()

	trigger := findFirst(t, doc, withAttr("id", "profile-trigger"), "profile trigger")
	label := findFirst(t, trigger, withAttr("data-role", "label"), "profile trigger label")
	initial := findFirst(t, trigger, withAttr("data-role", "initial"), "profile trigger initial")

	return text(label), text(initial)
}

func isOpen(t *testing.T, doc *html.Node, id string) bool {
	t.Helper()

	node := findFirst(t, doc, withAttr("id", id), id)
	value, _ := attr(node, "data-open")

	return value == "true"
}

func TestPageNavigation(t *testing.T) {
	type testCase struct {
		Path           string
		ExpectedActive string
	}

	testCases := []testCase{
		{Path: "/home", ExpectedActive: "Home"},
		{Path: "/articles", ExpectedActive: "Articles"},
		{Path: "/newsandmaps", ExpectedActive: "NewsAndMaps"},
	}

	client := newTestClient(t, &fakeProvider{})

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			doc := client.get(tc.Path)

			links := navLinks(t, doc, "desktop")

			if e, g := 3, len(links); e != g {
				t.Fatalf("len(links): expected '%v', got '%v'", e, g)
			}

			expectedOrder := []string{"Home", "Articles", "NewsAndMaps"}
			active := []string{}

			for i, link := range links {
				page, _ := attr(link, "data-page")
				if e, g := expectedOrder[i], page; e != g {
					t.Errorf("links[%d]: expected page '%v', got '%v'", i, e, g)
				}

				if value, _ := attr(link, "data-active"); value == "true" {
					active = append(active, page)
				}
			}

			if e, g := 1, len(active); e != g {
				t.Fatalf("active links: expected '%v', got '%v'", e, g)
			}

			if e, g := tc.ExpectedActive, active[0]; e != g {
				t.Errorf("active link: expected '%v', got '%v'", e, g)
			}

			content := findFirst(t, doc, withAttr("data-page-content", tc.ExpectedActive), "page content")
			if content.Parent == nil || content.Parent.Data != "main" {
				t.Errorf("page content: expected to be rendered in <main>")
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	client := newTestClient(t, &fakeProvider{})

	status, _ := client.do(http.MethodGet, "/", "", nil)
	if e, g := http.StatusSeeOther, status; e != g {
		t.Errorf("GET /: expected status '%v', got '%v'", e, g)
	}

	status, _ = client.do(http.MethodGet, "/unknown", "", nil)
	if e, g := http.StatusNotFound, status; e != g {
		t.Errorf("GET /unknown: expected status '%v', got '%v'", e, g)
	}

	doc := client.get("/ui/header?page=Unknown")
	for _, link := range navLinks(t, doc, "desktop") {
		if value, _ := attr(link, "data-active"); value == "true" {
			page, _ := attr(link, "data-page")
			t.Errorf("link '%s': expected no active link for an unknown page", page)
		}
	}
}

func TestProfileTrigger(t *testing.T) {
	type testCase struct {
		Provider        *fakeProvider
		ExpectedLabel   string
		ExpectedInitial string
	}

	testCases := []testCase{
		{
			Provider:        &fakeProvider{user: &account.User{FullName: "ada Lovelace"}},
			ExpectedLabel:   "ada Lovelace",
			ExpectedInitial: "A",
		},
		{
			Provider:        &fakeProvider{user: &account.User{Email: "nobody@example.com"}},
			ExpectedLabel:   "Profile",
			ExpectedInitial: "U",
		},
		{
			Provider:        &fakeProvider{},
			ExpectedLabel:   "Profile",
			ExpectedInitial: "U",
		},
		{
			Provider:        &fakeProvider{err: errors.New("network unreachable")},
			ExpectedLabel:   "Profile",
			ExpectedInitial: "U",
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			client := newTestClient(t, tc.Provider, WithFetchWait(5*time.Second))

			doc := client.get("/home")

			label, initial := triggerOf(t, doc)

			if e, g := tc.ExpectedLabel, label; e != g {
				t.Errorf("label: expected '%v', got '%v'", e, g)
			}

			if e, g := tc.ExpectedInitial, initial; e != g {
				t.Errorf("initial: expected '%v', got '%v'", e, g)
			}

			if errs := findAll(doc, withAttr("data-role", "error")); len(errs) != 0 {
				t.Errorf("expected no error to be rendered, got '%d'", len(errs))
			}
		})
	}
}

func TestPendingFetch(t *testing.T) {
	provider := &fakeProvider{
		user:    &account.User{FullName: "Grace"},
		release: make(chan struct{}),
	}

	client := newTestClient(t, provider, WithFetchWait(0))

	doc := client.get("/articles")

	label, initial := triggerOf(t, doc)
	if label != "Profile" || initial != "U" {
		t.Errorf("trigger: expected placeholders while fetching, got '%v' / '%v'", label, initial)
	}

	header := findFirst(t, doc, withAttr("id", "app-header"), "header")
	if _, polling := attr(header, "hx-get"); !polling {
		t.Errorf("header: expected to poll while the user is fetched")
	}

	close(provider.release)

	deadline := time.Now().Add(5 * time.Second)

	for {
		doc = client.get("/ui/header?page=Articles")

		label, initial = triggerOf(t, doc)
		if label == "Grace" {
			break
		}

		if time.Now().After(deadline) {
			t.Fatalf("label: expected 'Grace', got '%v'", label)
		}

		time.Sleep(10 * time.Millisecond)
	}

	if e, g := "G", initial; e != g {
		t.Errorf("initial: expected '%v', got '%v'", e, g)
	}

	header = findFirst(t, doc, withAttr("id", "app-header"), "header")
	if _, polling := attr(header, "hx-get"); polling {
		t.Errorf("header: expected to stop polling once the user is fetched")
	}
}

func TestMobileMenu(t *testing.T) {
	client := newTestClient(t, &fakeProvider{})

	doc := client.get("/home")
	if isOpen(t, doc, "mobile-menu-button") {
		t.Fatalf("mobile menu: expected closed on first render")
	}

	if mobile := findAll(doc, withAttr("data-nav", "mobile")); len(mobile) != 0 {
		t.Errorf("mobile navigation: expected hidden while the menu is closed")
	}

	doc = client.post("/ui/menu/toggle?page=Home")
	if !isOpen(t, doc, "mobile-menu-button") {
		t.Fatalf("mobile menu: expected open after one toggle")
	}

	links := navLinks(t, doc, "mobile")
	if e, g := 3, len(links); e != g {
		t.Fatalf("len(mobile links): expected '%v', got '%v'", e, g)
	}

	doc = client.post("/ui/menu/toggle?page=Home")
	if isOpen(t, doc, "mobile-menu-button") {
		t.Errorf("mobile menu: expected closed after two toggles")
	}

	client.post("/ui/menu/toggle?page=Home")

	// Following a mobile navigation link closes the menu
	href, _ := attr(links[1], "href")

	doc = client.get(href)
	if isOpen(t, doc, "mobile-menu-button") {
		t.Errorf("mobile menu: expected closed after a mobile navigation")
	}

	// The menu state survives desktop navigations
	client.post("/ui/menu/toggle?page=Articles")

	doc = client.get("/newsandmaps")
	if !isOpen(t, doc, "mobile-menu-button") {
		t.Errorf("mobile menu: expected still open after a desktop navigation")
	}
}

func TestProfilePanel(t *testing.T) {
	client := newTestClient(t, &fakeProvider{user: &account.User{FullName: "Ada"}}, WithFetchWait(5*time.Second))

	doc := client.get("/home")
	if isOpen(t, doc, "profile-panel") {
		t.Fatalf("profile panel: expected closed on first render")
	}

	doc = client.post("/ui/profile/open?page=Home")
	if !isOpen(t, doc, "profile-panel") {
		t.Fatalf("profile panel: expected open")
	}

	name := findFirst(t, doc, withAttr("data-role", "full-name"), "panel full name")
	if e, g := "Ada", text(name); e != g {
		t.Errorf("panel full name: expected '%v', got '%v'", e, g)
	}

	doc = client.get("/articles")
	if !isOpen(t, doc, "profile-panel") {
		t.Errorf("profile panel: expected still open after navigation")
	}

	doc = client.post("/ui/profile/close?page=Articles")
	if isOpen(t, doc, "profile-panel") {
		t.Errorf("profile panel: expected closed")
	}
}

func TestProfileUpdate(t *testing.T) {
	type testCase struct {
		FullName        string
		ExpectedLabel   string
		ExpectedInitial string
	}

	testCases := []testCase{
		{FullName: "Grace Hopper", ExpectedLabel: "Grace Hopper", ExpectedInitial: "G"},
		{FullName: "", ExpectedLabel: "Profile", ExpectedInitial: "U"},
		{FullName: "émilie", ExpectedLabel: "émilie", ExpectedInitial: "É"},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("Case #%d", idx), func(t *testing.T) {
			provider := &fakeProvider{user: &account.User{ID: "u1", FullName: "Ada"}}
			client := newTestClient(t, provider, WithFetchWait(5*time.Second))

			client.get("/home")
			client.post("/ui/profile/open?page=Home")

			var body bytes.Buffer
			writer := multipart.NewWriter(&body)

			if err := writer.WriteField("full_name", tc.FullName); err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if err := writer.Close(); err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			status, doc := client.do(http.MethodPost, "/ui/profile?page=Home", writer.FormDataContentType(), &body)
			if e, g := http.StatusOK, status; e != g {
				t.Fatalf("status: expected '%v', got '%v'", e, g)
			}

			header := findFirst(t, doc, withAttr("id", "app-header"), "out of band header")
			if value, _ := attr(header, "hx-swap-oob"); value != "true" {
				t.Errorf("header: expected an out of band swap")
			}

			label, initial := triggerOf(t, doc)

			if e, g := tc.ExpectedLabel, label; e != g {
				t.Errorf("label: expected '%v', got '%v'", e, g)
			}

			if e, g := tc.ExpectedInitial, initial; e != g {
				t.Errorf("initial: expected '%v', got '%v'", e, g)
			}

			// The replaced user is kept by the shell
			doc = client.get("/articles")

			label, _ = triggerOf(t, doc)
			if e, g := tc.ExpectedLabel, label; e != g {
				t.Errorf("label after navigation: expected '%v', got '%v'", e, g)
			}

			updates := provider.Updates()

			if e, g := 1, len(updates); e != g {
				t.Fatalf("len(updates): expected '%v', got '%v'", e, g)
			}

			if updates[0].Avatar != nil {
				t.Errorf("updates[0].Avatar: expected nil, got '%v'", *updates[0].Avatar)
			}
		})
	}
}

type fakeStorage struct {
	mutex sync.Mutex
	puts  map[string]string
}

func (s *fakeStorage) Put(ctx context.Context, owner string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", errors.WithStack(err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.puts == nil {
		s.puts = make(map[string]string)
	}

	s.puts[owner] = contentType

	return "https://cdn.example.com/" + owner + ".png", nil
}

var _ avatar.Storage = &fakeStorage{}

func postProfileForm(t *testing.T, client *testClient, fullName string, avatarContent []byte) *html.Node {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("full_name", fullName); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if avatarContent != nil {
		part, err := writer.CreateFormFile("avatar", "avatar.bin")
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if _, err := part.Write(avatarContent); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	status, doc := client.do(http.MethodPost, "/ui/profile?page=Home", writer.FormDataContentType(), &body)
	if e, g := http.StatusOK, status; e != g {
		t.Fatalf("status: expected '%v', got '%v'", e, g)
	}

	return doc
}

func TestProfileAvatarUpload(t *testing.T) {
	provider := &fakeProvider{user: &account.User{ID: "u1", FullName: "Ada"}}
	storage := &fakeStorage{}

	client := newTestClient(t, provider, WithFetchWait(5*time.Second), WithAvatarStorage(storage, 1<<20))

	client.get("/home")
	client.post("/ui/profile/open?page=Home")

	png := []byte("\x89PNG\r\n\x1a\n0000000000")

	doc := postProfileForm(t, client, "Ada", png)

	trigger := findFirst(t, doc, withAttr("id", "profile-trigger"), "profile trigger")
	img := findFirst(t, trigger, func(n *html.Node) bool { return n.Data == "img" }, "avatar image")

	if e, g := "https://cdn.example.com/u1.png", func() string { v, _ := attr(img, "src"); return v }(); e != g {
		t.Errorf("avatar src: expected '%v', got '%v'", e, g)
	}

	storage.mutex.Lock()
	contentType := storage.puts["u1"]
	storage.mutex.Unlock()

	if e, g := "image/png", contentType; e != g {
		t.Errorf("stored content type: expected '%v', got '%v'", e, g)
	}

	doc = postProfileForm(t, client, "Ada", []byte("plain text is not an image"))

	message := findFirst(t, doc, withAttr("data-role", "error"), "error message")
	if e, g := errMessageInvalidAvatar, text(message); e != g {
		t.Errorf("error message: expected '%v', got '%v'", e, g)
	}

	if e, g := 1, len(provider.Updates()); e != g {
		t.Errorf("len(updates): expected '%v', got '%v'", e, g)
	}
}

func TestProfileUpdateUnauthenticated(t *testing.T) {
	provider := &fakeProvider{updateErr: errors.WithStack(account.ErrUnauthenticated)}

	client := newTestClient(t, provider, WithFetchWait(5*time.Second))

	client.get("/home")
	client.post("/ui/profile/open?page=Home")

	doc := postProfileForm(t, client, "Ada", nil)

	message := findFirst(t, doc, withAttr("data-role", "error"), "error message")
	if e, g := errMessageUnauthenticated, text(message); e != g {
		t.Errorf("error message: expected '%v', got '%v'", e, g)
	}

	label, _ := triggerOf(t, client.get("/home"))
	if e, g := "Profile", label; e != g {
		t.Errorf("label: expected '%v', got '%v'", e, g)
	}
}

func TestShellCookie(t *testing.T) {
	provider := &fakeProvider{user: &account.User{FullName: "Ada"}}

	client := newAnonymousTestClient(t, provider, WithFetchWait(5*time.Second))

	res, err := client.client.Get(client.server.URL + "/home")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	res.Body.Close()

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "breathe_shell" {
			cookie = c
		}
	}

	if cookie == nil {
		t.Fatalf("cookie: expected the shell cookie to be set")
	}

	if cookie.Secure {
		t.Errorf("cookie.Secure: expected 'false', got 'true'")
	}

	if e, g := http.SameSiteLaxMode, cookie.SameSite; e != g {
		t.Errorf("cookie.SameSite: expected '%v', got '%v'", e, g)
	}

	// The cookie is sent back and mounts the shell
	doc := client.get("/home")

	label, _ := triggerOf(t, doc)
	if e, g := "Ada", label; e != g {
		t.Errorf("label: expected '%v', got '%v'", e, g)
	}

	if e, g := 1, client.registry.Len(); e != g {
		t.Errorf("registry.Len(): expected '%v', got '%v'", e, g)
	}

	if e, g := 1, provider.Calls(); e != g {
		t.Errorf("provider.Calls(): expected '%v', got '%v'", e, g)
	}
}

func TestCookielessRequests(t *testing.T) {
	provider := &fakeProvider{user: &account.User{FullName: "Ada"}}

	client := newAnonymousTestClient(t, provider, WithFetchWait(5*time.Second))

	// Without a cookie jar, every request comes without the shell cookie
	client.client.Jar = nil

	for i := 0; i < 100; i++ {
		doc := client.get("/home")

		label, _ := triggerOf(t, doc)
		if e, g := "Profile", label; e != g {
			t.Fatalf("request #%d: expected label '%v', got '%v'", i, e, g)
		}

		header := findFirst(t, doc, withAttr("id", "app-header"), "header")
		if _, polling := attr(header, "hx-get"); !polling {
			t.Fatalf("request #%d: expected the header to poll until the shell is mounted", i)
		}
	}

	if e, g := 0, client.registry.Len(); e != g {
		t.Errorf("registry.Len(): expected '%v', got '%v'", e, g)
	}

	if e, g := 0, provider.Calls(); e != g {
		t.Errorf("provider.Calls(): expected '%v', got '%v'", e, g)
	}
}
