package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Username]
	gen := s.generation
	s.mu.Unlock()

	if !ok || acc.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	pair, err := s.issuer.pair(acc.user.ID, gen)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken, User: &acc.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !readJSON(w, r, &req) {
		return
	}

	fields := map[string][]string{}
	if req.Username == "" {
		fields["username"] = []string{"This field may not be blank."}
	}
	if req.Password == "" {
		fields["password"] = []string{"This field may not be blank."}
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = []string{"Enter a valid email address."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.accounts[req.Username]; taken {
		fields["username"] = []string{"A user with that username already exists."}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	s.addUserLocked(req.Username, req.Password, req.Email)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.refreshCalls++
	if s.refreshReceived != nil {
		select {
		case s.refreshReceived <- struct{}{}:
		default:
		}
	}
	fail, delay, rotate := s.failRefresh, s.refreshDelay, s.rotateRefresh
	minGen, gen := s.minRefreshGen, s.generation
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	c, err := s.issuer.parse(req.Refresh, tokenTypeRefresh, minGen)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	var resp models.RefreshResponse
	if rotate {
		pair, err := s.issuer.pair(c.UserID, gen)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp = models.RefreshResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken}
	} else {
		access, err := s.issuer.access(c.UserID, gen)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp = models.RefreshResponse{Access: access}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	if !readJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	user, ok := s.googleCodes[req.Code]
	delete(s.googleCodes, req.Code)
	gen := s.generation
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid authorization code"})
		return
	}

	pair, err := s.issuer.pair(user.ID, gen)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.GoogleLoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: &user})
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}

	uid := userID(r)

	s.mu.Lock()
	msg := models.ChatMessage{
		ID:        int64(len(s.history[uid]) + 1),
		Message:   req.Message,
		Response:  "You asked about: " + req.Message,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.history[uid] = append(s.history[uid], msg)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, msg)
}

// chatHistory answers in the paginated shape, newest first.
func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	own := s.history[userID(r)]
	results := make([]models.ChatMessage, 0, len(own))
	for i := len(own) - 1; i >= 0; i-- {
		results = append(results, own[i])
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (s *Server) searchJobs(w http.ResponseWriter, r *http.Request) {
	var req models.JobSearchRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.JobTitle == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "job_title is required"})
		return
	}

	jobs := []models.Job{{
		ID:             "job-1",
		Title:          req.JobTitle,
		Employer:       "Acme",
		City:           "Bengaluru",
		Country:        req.Location,
		EmploymentType: "FULLTIME",
		ApplyLink:      "https://jobs.example.com/1",
	}}
	writeJSON(w, http.StatusOK, models.SearchResponse[models.Job]{Status: "success", Count: len(jobs), Data: jobs})
}

func (s *Server) searchColleges(w http.ResponseWriter, r *http.Request) {
	var req models.CollegeSearchRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Field == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field is required"})
		return
	}

	colleges := []models.College{{
		Name:     "Institute of " + req.Field,
		Location: req.Location,
		Courses:  []string{req.Field},
	}}
	writeJSON(w, http.StatusOK, models.SearchResponse[models.College]{Status: "success", Count: len(colleges), Data: colleges})
}
