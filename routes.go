/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Seednode/wordimposter/games/imposter"
	"github.com/Seednode/wordimposter/games/words"
	"github.com/julienschmidt/httprouter"
)

const maxActionBytes = 64 << 10

//go:embed assets/imposter/index.html
var indexHTML []byte

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a failed action to a status: refused transitions are 422,
// anything else the client sent wrong is 400.
func writeError(cfg *Config, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errSessionClosed):
		writeJSON(cfg, w, http.StatusGone, errorBody{Code: "SESSION_CLOSED", Message: err.Error()})
	case errors.Is(err, errUnknownAction), errors.Is(err, errBadRequest):
		writeJSON(cfg, w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: err.Error()})
	default:
		code, _ := imposter.CodeOf(err)
		writeJSON(cfg, w, http.StatusUnprocessableEntity, errorBody{Code: string(code), Message: err.Error()})
	}
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

func serveState(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		view, err := gm.getHub(ps.ByName("gameid")).view()
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, view)
	}
}

func serveAction(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var msg ClientMessage
		if err := json.NewDecoder(io.LimitReader(r.Body, maxActionBytes)).Decode(&msg); err != nil {
			writeError(cfg, w, errBadRequest)
			return
		}

		view, err := gm.getHub(ps.ByName("gameid")).do(msg)
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, view)
	}
}

func serveReveal(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		view, err := gm.getHub(ps.ByName("gameid")).reveal()
		if err != nil {
			writeError(cfg, w, err)
			return
		}

		logf(cfg, "SERVE: Word for %s in game %s to %s", view.Name, ps.ByName("gameid"), realIP(r))

		writeJSON(cfg, w, http.StatusOK, view)
	}
}

// CategoryDetail is a category as the editor sees it.
type CategoryDetail struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Sets     [][]string `json:"sets"`
	Text     string     `json:"text"`
	IsCustom bool       `json:"is_custom"`
}

// CategoryRequest creates or edits a custom category. Text holds one
// word-set per line, words separated by commas.
type CategoryRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func writeCategoryError(cfg *Config, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, words.ErrNotCustom):
		writeJSON(cfg, w, http.StatusNotFound, errorBody{Code: "NOT_CUSTOM", Message: err.Error()})
	case errors.Is(err, words.ErrNameRequired):
		writeJSON(cfg, w, http.StatusUnprocessableEntity, errorBody{Code: "NAME_REQUIRED", Message: err.Error()})
	case errors.Is(err, words.ErrNameTooLong):
		writeJSON(cfg, w, http.StatusUnprocessableEntity, errorBody{Code: "NAME_TOO_LONG", Message: err.Error()})
	case errors.Is(err, words.ErrNoValidSets):
		writeJSON(cfg, w, http.StatusUnprocessableEntity, errorBody{Code: "NO_VALID_SETS", Message: err.Error()})
	default:
		writeJSON(cfg, w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: err.Error()})
	}
}

func listCategories(cfg *Config, store *words.Store) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		all := store.All()
		keys := store.Keys()

		out := make([]CategoryDetail, 0, len(keys))
		for _, key := range keys {
			c := all[key]
			out = append(out, CategoryDetail{
				Key:      key,
				Name:     c.Name,
				Sets:     c.Sets,
				Text:     words.FormatSets(c.Sets),
				IsCustom: c.IsCustom,
			})
		}

		writeJSON(cfg, w, http.StatusOK, out)
	}
}

func decodeCategory(r *http.Request) (CategoryRequest, error) {
	var req CategoryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxActionBytes)).Decode(&req); err != nil {
		return CategoryRequest{}, errBadRequest
	}
	return req, nil
}

func createCategory(cfg *Config, store *words.Store, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		req, err := decodeCategory(r)
		if err != nil {
			writeCategoryError(cfg, w, err)
			return
		}

		key, err := store.Create(req.Name, req.Text)
		if err != nil {
			writeCategoryError(cfg, w, err)
			return
		}

		logf(cfg, "CATEGORIES: Created %s from %s", key, realIP(r))
		gm.notifyAll()

		c, _ := store.Get(key)
		writeJSON(cfg, w, http.StatusCreated, CategoryDetail{
			Key:      key,
			Name:     c.Name,
			Sets:     c.Sets,
			Text:     words.FormatSets(c.Sets),
			IsCustom: true,
		})
	}
}

func editCategory(cfg *Config, store *words.Store, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := ps.ByName("key")

		req, err := decodeCategory(r)
		if err != nil {
			writeCategoryError(cfg, w, err)
			return
		}

		if err := store.Edit(key, req.Name, req.Text); err != nil {
			writeCategoryError(cfg, w, err)
			return
		}

		logf(cfg, "CATEGORIES: Edited %s from %s", key, realIP(r))
		gm.notifyAll()

		c, _ := store.Get(key)
		writeJSON(cfg, w, http.StatusOK, CategoryDetail{
			Key:      key,
			Name:     c.Name,
			Sets:     c.Sets,
			Text:     words.FormatSets(c.Sets),
			IsCustom: true,
		})
	}
}

func deleteCategory(cfg *Config, store *words.Store, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := ps.ByName("key")

		if err := store.Remove(key); err != nil {
			writeCategoryError(cfg, w, err)
			return
		}

		logf(cfg, "CATEGORIES: Deleted %s from %s", key, realIP(r))
		gm.notifyAll()

		w.WriteHeader(http.StatusNoContent)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerImposterGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/state    → current view as JSON
//   - $path/:gameid/action   → apply one action, returns the new view
//   - $path/:gameid/reveal   → word for the player holding the device
//   - $path/:gameid/qr       → PNG QR code for that game URL
//   - /categories            → list and create categories
//   - /categories/:key       → edit or delete a custom category
func registerImposterGame(cfg *Config, path string, mux *httprouter.Router, deps *gameDeps) *GameManager {
	gm := newGameManager(cfg, deps)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/state", serveState(cfg, gm))
	mux.POST(cfg.prefix+path+"/:gameid/action", serveAction(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/reveal", serveReveal(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler(cfg))

	mux.GET(cfg.prefix+"/categories", listCategories(cfg, deps.categories))
	mux.POST(cfg.prefix+"/categories", createCategory(cfg, deps.categories, gm))
	mux.PUT(cfg.prefix+"/categories/:key", editCategory(cfg, deps.categories, gm))
	mux.DELETE(cfg.prefix+"/categories/:key", deleteCategory(cfg, deps.categories, gm))

	return gm
}
