// Package tempmailtest provides an in-memory HTTP fake of the disposable-email
// API for tests.
package tempmailtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/wesm/tempbox/internal/tempmail"
)

// Server is a fake API backed by in-memory inboxes.
type Server struct {
	mu          sync.Mutex
	domains     []string
	inboxes     map[string][]tempmail.Email
	attachments map[string][]tempmail.Attachment
	files       map[string][]byte
	failures    map[string]failure
	requests    []string

	httpServer *httptest.Server
}

type failure struct {
	status  int
	name    string
	message string
}

// NewServer starts a fake server that is shut down when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		domains:     []string{"vwh.sh"},
		inboxes:     make(map[string][]tempmail.Email),
		attachments: make(map[string][]tempmail.Attachment),
		files:       make(map[string][]byte),
		failures:    make(map[string]failure),
	}
	s.httpServer = httptest.NewServer(s.router())
	t.Cleanup(s.httpServer.Close)
	return s
}

// URL returns the base URL of the fake server.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// SetDomains replaces the domain list.
func (s *Server) SetDomains(domains ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains = append([]string(nil), domains...)
}

// AddEmails appends messages to an address's inbox.
func (s *Server) AddEmails(address string, emails ...tempmail.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxes[address] = append(s.inboxes[address], emails...)
}

// AddAttachment registers an attachment and its content for a message.
func (s *Server) AddAttachment(emailID string, att tempmail.Attachment, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	att.EmailID = emailID
	if att.Size == 0 {
		att.Size = int64(len(data))
	}
	s.attachments[emailID] = append(s.attachments[emailID], att)
	s.files[att.ID] = data
}

// Fail makes every request to the named route fail with the given status and
// error body until cleared with Fail(route, 0, "", "").
// Route names: domains, emails, count, delete_all, email, delete, attachments.
func (s *Server) Fail(route string, status int, name, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = failure{status: status, name: name, message: message}
}

// Requests returns the "METHOD path" of each request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.recordMiddleware)

	r.Get("/domains", s.guard("domains", s.handleDomains))
	r.Get("/emails/count/{address}", s.guard("count", s.handleCount))
	r.Get("/emails/{address}", s.guard("emails", s.handleEmails))
	r.Delete("/emails/{address}", s.guard("delete_all", s.handleDeleteAll))
	r.Get("/inbox/{id}", s.guard("email", s.handleEmail))
	r.Delete("/inbox/{id}", s.guard("delete", s.handleDelete))
	r.Get("/inbox/{id}/attachments", s.guard("attachments", s.handleAttachments))
	r.Get("/attachments/{id}", s.handleFile)

	return r
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) guard(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[route]
		s.mu.Unlock()
		if ok {
			writeError(w, f.status, f.name, f.message)
			return
		}
		h(w, r)
	}
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": result})
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"name": name, "message": message},
	})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	domains := append([]string{}, s.domains...)
	s.mu.Unlock()
	writeResult(w, domains)
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	s.mu.Lock()
	inbox := s.inboxes[address]
	page := []tempmail.Email{}
	for i := offset; i < len(inbox) && i < offset+limit; i++ {
		summary := inbox[i]
		summary.TextContent = ""
		summary.HTMLContent = ""
		page = append(page, summary)
	}
	s.mu.Unlock()

	writeResult(w, page)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	s.mu.Lock()
	n := len(s.inboxes[address])
	s.mu.Unlock()
	writeResult(w, map[string]int{"count": n})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	s.mu.Lock()
	n := len(s.inboxes[address])
	delete(s.inboxes, address)
	s.mu.Unlock()
	writeResult(w, map[string]int{"deleted_count": n})
}

// find returns the inbox address and position of a message. Callers hold s.mu.
func (s *Server) find(id string) (string, int, bool) {
	for addr, inbox := range s.inboxes {
		for i, e := range inbox {
			if e.ID == id {
				return addr, i, true
			}
		}
	}
	return "", 0, false
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	addr, i, ok := s.find(id)
	var email tempmail.Email
	if ok {
		email = s.inboxes[addr][i]
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "email not found")
		return
	}
	writeResult(w, email)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	addr, i, ok := s.find(id)
	if ok {
		inbox := s.inboxes[addr]
		s.inboxes[addr] = append(inbox[:i:i], inbox[i+1:]...)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "email not found")
		return
	}
	writeResult(w, map[string]string{"message": "deleted"})
}

func (s *Server) handleAttachments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	atts := append([]tempmail.Attachment{}, s.attachments[id]...)
	s.mu.Unlock()
	writeResult(w, atts)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	data, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}
