package main

import (
	"errors"
	"testing"
)

func TestBanAndUnban(t *testing.T) {
	b := NewBanRegistry(nil)

	if err := b.Ban("mallory", "spamming", "admin"); err != nil {
		t.Fatal(err)
	}
	if !b.IsBanned("mallory") {
		t.Error("mallory not banned")
	}

	rec, ok := b.Info("mallory")
	if !ok {
		t.Fatal("no ban record")
	}
	if rec.Reason != "spamming" || rec.BannedBy != "admin" {
		t.Errorf("record = %+v", rec)
	}

	b.Unban("mallory")
	if b.IsBanned("mallory") {
		t.Error("mallory still banned after unban")
	}
}

func TestBanSuperAdminRejected(t *testing.T) {
	prev := superAdminUsername
	superAdminUsername = "root-owner"
	defer func() { superAdminUsername = prev }()

	b := NewBanRegistry(nil)
	err := b.Ban("root-owner", "trying anyway", "other-admin")
	if !errors.Is(err, errCannotBanSuperAdmin) {
		t.Fatalf("err = %v, want CANNOT_BAN_SUPER_ADMIN", err)
	}
	if b.IsBanned("root-owner") {
		t.Error("super-admin ended up banned")
	}
}

func TestBanOverwritesExistingRecord(t *testing.T) {
	b := NewBanRegistry(nil)

	b.Ban("mallory", "first", "admin")
	b.Ban("mallory", "second", "other")

	rec, _ := b.Info("mallory")
	if rec.Reason != "second" || rec.BannedBy != "other" {
		t.Errorf("record = %+v, want the later ban", rec)
	}
	if len(b.All()) != 1 {
		t.Errorf("got %d records, want 1", len(b.All()))
	}
}

func TestAllSortedByUsername(t *testing.T) {
	b := NewBanRegistry(nil)
	b.Ban("zed", "", "admin")
	b.Ban("alice", "", "admin")
	b.Ban("mike", "", "admin")

	all := b.All()
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if all[0].Username != "alice" || all[1].Username != "mike" || all[2].Username != "zed" {
		t.Errorf("order = [%s, %s, %s]", all[0].Username, all[1].Username, all[2].Username)
	}
}
