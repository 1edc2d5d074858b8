package main

import "log"

// Presenter is the rendering side of the game. The core pushes notifications
// through it after a draw resolves and after any ledger mutation; the
// presenter has no write access back into the core. The HTTP layer is one
// presenter (JSON responses); this hook covers anything else that wants to
// observe results, and defaults to the log.
type Presenter interface {
	ResultRevealed(username string, outcome string)
	LedgerChanged(username string)
}

type logPresenter struct{}

func (logPresenter) ResultRevealed(username string, outcome string) {
	log.Println("Reveal:", username, "got", outcome)
}

func (logPresenter) LedgerChanged(username string) {}
