package main

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/matzehuels/storekit/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"manifest not found", pkgerrors.New(pkgerrors.ErrCodeManifestNotFound, "Composer file not found: /srv"), exitUsage},
		{"wrapped config error", fmt.Errorf("load: %w", pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "bad")), exitUsage},
		{"network", pkgerrors.New(pkgerrors.ErrCodeNetwork, "registry down"), exitFailure},
		{"plain", errors.New("update check failed"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
