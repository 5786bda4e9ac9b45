package app

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

type stateResponse struct {
	State   string `json:"state"`
	Targets int    `json:"targets"`
	Clients int    `json:"clients"`
}

// Handler serves the browser page, the target layout and the translation
// stream.
func (p *Parallax) Handler() http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: registered targets
	mux.HandleFunc("/api/targets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(p.Helper.Targets()); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// JSON API endpoint: lifecycle state
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		resp := stateResponse{
			State:   p.Helper.State().String(),
			Targets: len(p.Helper.Targets()),
		}
		if p.Hub != nil {
			resp.Clients = p.Hub.Clients()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	if p.Hub != nil {
		mux.Handle("/ws", p.Hub)
	}

	// Static files embedded from ./static as the root
	root, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Printf("web: static files: %v", err)
	} else {
		mux.Handle("/", http.FileServer(http.FS(root)))
	}
	return mux
}
