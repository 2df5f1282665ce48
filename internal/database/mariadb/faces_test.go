package mariadb

import (
	"context"
	"strings"
	"testing"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestAppend_RejectsOversizedLabel(t *testing.T) {
	repo := NewFaceFeatureRepository(nil)

	_, err := repo.Append(context.Background(), strings.Repeat("a", maxLabelBytes+1), database.Descriptor{1})
	assert.ErrorContains(t, err, "exceeds")
}
