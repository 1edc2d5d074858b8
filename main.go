package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
)

var (
	ledgers   *LedgerStore
	catalog   *Catalog
	banlist   *BanRegistry
	gameSaver *Saver
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "data/eggs.yaml"
	}

	autosaveSeconds := 10
	if v := os.Getenv("AUTOSAVE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			autosaveSeconds = n
		}
	}

	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		log.Println("DEV_MODE enabled")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := ensureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	loadSuperAdminName()
	if err := ensureSuperAdmin(db); err != nil {
		log.Fatal("Failed to ensure super-admin:", err)
	}

	banlist = NewBanRegistry(db)
	if err := banlist.LoadFromDB(); err != nil {
		log.Fatal("Failed to load bans:", err)
	}

	catalog = LoadCatalog(catalogPath)

	store := NewPostgresStore(db)
	gameSaver = NewSaver(store)
	gameSaver.Start()

	ledgers = NewLedgerStore(store, gameSaver, logPresenter{})

	startAutosaveLoop(ledgers, time.Duration(autosaveSeconds)*time.Second)

	// Exit save: flush every loaded ledger before the process dies.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Shutting down, saving all ledgers")
		ledgers.RequestSaveAll()
		gameSaver.Stop()
		os.Exit(0)
	}()

	registerRoutes(db)

	log.Println("Listening on port", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func registerRoutes(db *sql.DB) {
	http.HandleFunc("/health", healthHandler)

	http.HandleFunc("/auth/signup", signupHandler(db))
	http.HandleFunc("/auth/login", loginHandler(db))
	http.HandleFunc("/auth/logout", logoutHandler(db))

	http.HandleFunc("/state", stateHandler(db))
	http.HandleFunc("/open-egg", openEggHandler(db))
	http.HandleFunc("/sell-pet", sellPetHandler(db))
	http.HandleFunc("/toggle-lock", toggleLockHandler(db))
	http.HandleFunc("/mutate-pet", mutatePetHandler(db))
	http.HandleFunc("/remove-mutation", removeMutationHandler(db))

	http.HandleFunc("/admin/users", adminUsersHandler(db))
	http.HandleFunc("/admin/coins/add", adminAddCoinsHandler(db))
	http.HandleFunc("/admin/coins/set", adminSetCoinsHandler(db))
	http.HandleFunc("/admin/give-pet", adminGivePetHandler(db))
	http.HandleFunc("/admin/luck", adminLuckHandler(db))
	http.HandleFunc("/admin/rebalance", adminRebalanceHandler(db))
	http.HandleFunc("/admin/ban", adminBanHandler(db))
	http.HandleFunc("/admin/unban", adminUnbanHandler(db))
	http.HandleFunc("/admin/bans", adminBansHandler(db))
}
