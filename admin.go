package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

/* ======================
   Admin Request / Response Types
   ====================== */

type AdminUsersResponse struct {
	OK       bool        `json:"ok"`
	Error    string      `json:"error,omitempty"`
	Users    []string    `json:"users"`
	Bannable []string    `json:"bannable"`
	Pets     []Pet       `json:"pets"`
	Bans     []BanRecord `json:"bans"`
}

type AdminCoinsRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"amount"`
}

type AdminGivePetRequest struct {
	Username string `json:"username"`
	Pet      string `json:"pet"`
}

type AdminLuckRequest struct {
	Username   string  `json:"username"`
	Multiplier float64 `json:"multiplier"`
}

type AdminRebalanceRequest struct {
	Egg    string  `json:"egg"`
	Pet    string  `json:"pet"`
	Chance float64 `json:"chance"`
}

type AdminBanRequest struct {
	Username string `json:"username"`
	Reason   string `json:"reason,omitempty"`
}

type AdminResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type AdminBansResponse struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Bans  []BanRecord `json:"bans"`
}

func requireAdmin(db *sql.DB, w http.ResponseWriter, r *http.Request) (*Account, bool) {
	account, ok := requireSession(db, w, r)
	if !ok {
		return nil, false
	}
	if !isAdminAccount(account) {
		w.WriteHeader(http.StatusForbidden)
		return nil, false
	}
	return account, true
}

/* ======================
   Admin handlers
   ====================== */

// adminUsersHandler backs the admin pickers: every account, the subset that
// can still be banned, and the full pet roster for grants. Banned accounts
// stay out of both lists; the super-admin stays out of the bannable list.
func adminUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}

		all, err := listUsernames(db)
		if err != nil {
			json.NewEncoder(w).Encode(AdminUsersResponse{Error: "INTERNAL_ERROR"})
			return
		}

		users := make([]string, 0, len(all))
		bannable := make([]string, 0, len(all))
		for _, u := range all {
			if banlist.IsBanned(u) {
				continue
			}
			users = append(users, u)
			if u != superAdminUsername {
				bannable = append(bannable, u)
			}
		}

		json.NewEncoder(w).Encode(AdminUsersResponse{
			OK:       true,
			Users:    users,
			Bannable: bannable,
			Pets:     catalog.AllPets(),
			Bans:     banlist.All(),
		})
	}
}

func adminAddCoinsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminCoinsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		exists, err := accountExists(db, req.Username)
		if err != nil || !exists {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		if _, err := ledgers.Credit(req.Username, req.Amount); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminSetCoinsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminCoinsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		exists, err := accountExists(db, req.Username)
		if err != nil || !exists {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		if _, err := ledgers.SetCoins(req.Username, req.Amount); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminGivePetHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminGivePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		exists, err := accountExists(db, req.Username)
		if err != nil || !exists {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		pet, found := catalog.FindPet(req.Pet)
		if !found {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		item := Item{
			Name:   pet.Name,
			Rarity: pet.Rarity,
			Value:  pet.Value,
			Image:  pet.Image,
		}
		if err := ledgers.AddItem(req.Username, item); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminLuckHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminLuckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		exists, err := accountExists(db, req.Username)
		if err != nil || !exists {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		if _, err := ledgers.SetLuck(req.Username, req.Multiplier); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminRebalanceHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminRebalanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := catalog.Rebalance(req.Egg, req.Pet, req.Chance); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminBanHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		admin, ok := requireAdmin(db, w, r)
		if !ok {
			return
		}
		var req AdminBanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		exists, err := accountExists(db, req.Username)
		if err != nil || !exists {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		if err := banlist.Ban(req.Username, req.Reason, admin.Username); err != nil {
			json.NewEncoder(w).Encode(AdminResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminUnbanHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		var req AdminBanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		banlist.Unban(req.Username)
		json.NewEncoder(w).Encode(AdminResponse{OK: true})
	}
}

func adminBansHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(db, w, r); !ok {
			return
		}
		json.NewEncoder(w).Encode(AdminBansResponse{OK: true, Bans: banlist.All()})
	}
}
