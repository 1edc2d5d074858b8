package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
)

/* ======================
   Request / Response Types
   ====================== */

type SignupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
	Admin       bool   `json:"admin,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

type StateResponse struct {
	OK             bool       `json:"ok"`
	Error          string     `json:"error,omitempty"`
	Username       string     `json:"username,omitempty"`
	Role           string     `json:"role,omitempty"`
	Coins          int64      `json:"coins"`
	LuckMultiplier float64    `json:"luckMultiplier,omitempty"`
	Inventory      []Item     `json:"inventory"`
	Eggs           []Egg      `json:"eggs,omitempty"`
	Mutations      []Mutation `json:"mutations,omitempty"`
}

type OpenEggRequest struct {
	Egg string `json:"egg"`
}

type OpenEggResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Pet   *Item  `json:"pet,omitempty"`
	Coins int64  `json:"coins"`
}

type PetIndexRequest struct {
	Index int `json:"index"`
}

type SellPetResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Sold  string `json:"sold,omitempty"`
	Value int64  `json:"value,omitempty"`
	Coins int64  `json:"coins"`
}

type ToggleLockResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Locked bool   `json:"locked"`
}

type MutatePetResponse struct {
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	Outcome    string  `json:"outcome,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Destroyed  bool    `json:"destroyed,omitempty"`
	Pet        *Item   `json:"pet,omitempty"`
	Coins      int64   `json:"coins"`
}

type RemoveMutationResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Pet   *Item  `json:"pet,omitempty"`
	Coins int64  `json:"coins"`
}

/* ======================
   Session helpers
   ====================== */

func requireSession(db *sql.DB, w http.ResponseWriter, r *http.Request) (*Account, bool) {
	account, _, err := getSessionAccount(db, r)
	if err != nil || account == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}
	return account, true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

/* ======================
   Auth handlers
   ====================== */

func signupHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		account, err := createAccount(db, req.Username, req.Password, req.DisplayName, req.Admin)
		if err != nil {
			json.NewEncoder(w).Encode(AuthResponse{OK: false, Error: err.Error()})
			return
		}

		// Materialize the starter ledger (500 coins, empty inventory) so the
		// save exists before the first gameplay action.
		if _, err := ledgers.View(account.Username); err != nil {
			log.Println("Signup: ledger init failed for", account.Username, ":", err)
		}

		sessionID, expiresAt, err := createSession(db, account.AccountID)
		if err != nil {
			json.NewEncoder(w).Encode(AuthResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		writeSessionCookie(w, sessionID, expiresAt)

		json.NewEncoder(w).Encode(AuthResponse{OK: true, Username: account.Username, Role: account.Role})
	}
}

func loginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		account, err := authenticate(db, req.Username, req.Password)
		if err != nil {
			json.NewEncoder(w).Encode(AuthResponse{OK: false, Error: err.Error()})
			return
		}

		sessionID, expiresAt, err := createSession(db, account.AccountID)
		if err != nil {
			json.NewEncoder(w).Encode(AuthResponse{OK: false, Error: "INTERNAL_ERROR"})
			return
		}
		writeSessionCookie(w, sessionID, expiresAt)

		json.NewEncoder(w).Encode(AuthResponse{OK: true, Username: account.Username, Role: account.Role})
	}
}

func logoutHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		if _, sessionID, err := getSessionAccount(db, r); err == nil && sessionID != "" {
			clearSession(db, sessionID)
		}
		clearSessionCookie(w)
		json.NewEncoder(w).Encode(AuthResponse{OK: true})
	}
}

/* ======================
   Gameplay handlers
   ====================== */

func stateHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}

		ledger, err := ledgers.View(account.Username)
		if err != nil {
			log.Println("State: ledger load failed for", account.Username, ":", err)
			json.NewEncoder(w).Encode(StateResponse{Error: "INTERNAL_ERROR"})
			return
		}

		json.NewEncoder(w).Encode(StateResponse{
			OK:             true,
			Username:       account.Username,
			Role:           account.Role,
			Coins:          ledger.Coins,
			LuckMultiplier: ledger.LuckMultiplier,
			Inventory:      ledger.Inventory,
			Eggs:           catalog.Eggs(),
			Mutations:      MutationTable(),
		})
	}
}

func openEggHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}
		var req OpenEggRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		egg, found := catalog.Egg(req.Egg)
		if !found {
			json.NewEncoder(w).Encode(OpenEggResponse{OK: false, Error: errInvalidTarget.Error()})
			return
		}

		item, coins, err := ledgers.HatchFrom(account.Username, egg, nil)
		if err != nil {
			json.NewEncoder(w).Encode(OpenEggResponse{OK: false, Error: err.Error(), Coins: coins})
			return
		}

		logHatch(db, account.Username, egg.Name, item, egg.Price, coins+egg.Price, coins)

		json.NewEncoder(w).Encode(OpenEggResponse{OK: true, Pet: &item, Coins: coins})
	}
}

func sellPetHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}
		var req PetIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		item, coins, err := ledgers.SellItem(account.Username, req.Index)
		if err != nil {
			json.NewEncoder(w).Encode(SellPetResponse{OK: false, Error: err.Error(), Coins: coins})
			return
		}
		json.NewEncoder(w).Encode(SellPetResponse{OK: true, Sold: item.Name, Value: item.Value, Coins: coins})
	}
}

func toggleLockHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}
		var req PetIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		locked, err := ledgers.ToggleLock(account.Username, req.Index)
		if err != nil {
			json.NewEncoder(w).Encode(ToggleLockResponse{OK: false, Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(ToggleLockResponse{OK: true, Locked: locked})
	}
}

func mutatePetHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}
		var req PetIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, err := ledgers.MutatePet(account.Username, req.Index, nil)
		if err != nil {
			json.NewEncoder(w).Encode(MutatePetResponse{OK: false, Error: err.Error()})
			return
		}

		resp := MutatePetResponse{
			OK:         true,
			Outcome:    result.Outcome.Name,
			Multiplier: result.Multiplier,
			Destroyed:  result.Destroyed,
			Coins:      result.Coins,
		}
		if result.Destroyed {
			logMutation(db, account.Username, "", result.Outcome.Name, result.Multiplier, 0, 0, result.Coins+mutationFee, result.Coins)
		} else {
			item := result.Item
			resp.Pet = &item
			valueBefore := item.Value
			if item.BaseValue != nil {
				valueBefore = *item.BaseValue
			}
			logMutation(db, account.Username, item.Name, result.Outcome.Name, result.Multiplier, valueBefore, item.Value, result.Coins+mutationFee, result.Coins)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func removeMutationHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		account, ok := requireSession(db, w, r)
		if !ok {
			return
		}
		var req PetIndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		item, coins, err := ledgers.RemoveMutation(account.Username, req.Index)
		if err != nil {
			json.NewEncoder(w).Encode(RemoveMutationResponse{OK: false, Error: err.Error(), Coins: coins})
			return
		}
		json.NewEncoder(w).Encode(RemoveMutationResponse{OK: true, Pet: &item, Coins: coins})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
