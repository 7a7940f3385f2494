package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"he-demo/config"
	"he-demo/logging"
	"he-demo/models"
	"he-demo/render"
	"he-demo/service"
)

const sessionCookie = "he_demo_session"

//go:embed templates/index.html
var templateFS embed.FS

type pageData struct {
	State         models.DemoState
	CandidateKey  string
	Revealed      bool
	Notifications []models.Notification
	Processing    bool
	Frame         string
	Refresh       bool
	Theme         config.Theme

	CipherWidth    int
	AggregateWidth int
	KeyWidth       int
}

func parsePage() (*template.Template, error) {
	funcs := template.FuncMap{
		"truncate":     render.Truncate,
		"amount":       render.FormatAmount,
		"value":        render.FormatValue,
		"encLabel":     render.EncLabel,
		"cardTitle":    render.CardTitle,
		"stageMessage": render.StageMessage,
		"inc":          func(i int) int { return i + 1 },
	}

	t, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return t, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	demo, err := s.demoFromCookie(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	state := demo.Snapshot()
	key, revealed := demo.CandidateKey()
	data := pageData{
		State:         state,
		CandidateKey:  key,
		Revealed:      revealed,
		Notifications: demo.Notifications(),
		Processing:    render.ProcessingActive(state.Step),
		Frame:         render.ProcessingFrame(int(time.Now().Unix())),
		Refresh:       state.Step.InFlight(),
		Theme:         s.cfg.Theme,

		CipherWidth:    render.CiphertextWidth,
		AggregateWidth: render.AggregateWidth,
		KeyWidth:       render.PublicKeyWidth,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		logging.Errorf("failed to render page: %v", err)
	}
}

// handleUIAction applies a form post from the page and redirects back to it.
// Rejected actions leave the demo unchanged.
func (s *Server) handleUIAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	demo, err := s.demoFromCookie(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/ui/")
	index, _ := strconv.Atoi(r.FormValue("index"))

	switch action {
	case "add":
		err = demo.AddValue()
	case "remove":
		err = demo.RemoveValue(index)
	case "update":
		err = demo.UpdateValue(index, r.FormValue("text"))
	case "run":
		err = demo.Run()
	case "reset":
		err = demo.Reset()
	case "key":
		err = demo.SetCandidateKey(r.FormValue("key"))
	case "key/toggle":
		// Re-posting the same key keeps the last decrypt outcome.
		if current, _ := demo.CandidateKey(); r.Form.Has("key") && r.FormValue("key") != current {
			err = demo.SetCandidateKey(r.FormValue("key"))
		}
		if err == nil {
			err = demo.ToggleKeyVisibility()
		}
	case "key/generated":
		err = demo.UseGeneratedKey()
	case "decrypt":
		if r.Form.Has("key") {
			err = demo.SetCandidateKey(r.FormValue("key"))
		}
		if err == nil {
			_, err = demo.Decrypt()
		}
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logging.Debugf("ui action %s on %s: %v", action, demo.ID(), err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// demoFromCookie returns the caller's demo, starting a new one when the
// cookie is missing or the session expired.
func (s *Server) demoFromCookie(w http.ResponseWriter, r *http.Request) (*service.Demo, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if demo, err := s.sessions.Get(c.Value); err == nil {
			return demo, nil
		}
	}

	demo, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    demo.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return demo, nil
}
