// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	other, _ := HashPassword("s3cret")
	if hash == other {
		t.Error("two hashes of the same password must differ by salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := CheckPassword("correct horse", hash)
	if err != nil || !ok {
		t.Errorf("CheckPassword(correct) = %v, %v", ok, err)
	}

	ok, err = CheckPassword("battery staple", hash)
	if err != nil || ok {
		t.Errorf("CheckPassword(wrong) = %v, %v", ok, err)
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$2a$10$abc", "$argon2id$v=19$m=x$a$b"} {
		if _, err := CheckPassword("x", h); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("CheckPassword(%q) err = %v, want ErrInvalidHash", h, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, _ := HashPassword("pw")
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need a rehash")
	}

	weaker := strings.Replace(hash, "m=19456,t=2", "m=4096,t=1", 1)
	if !NeedsRehash(weaker) {
		t.Error("hash with old parameters should need a rehash")
	}

	if !NeedsRehash("garbage") {
		t.Error("garbage should need a rehash")
	}
}
