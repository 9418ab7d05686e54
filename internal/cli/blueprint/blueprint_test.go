package blueprint

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
	clitest "github.com/thenoetrevino/sitebook/internal/testutil/cli"
)

const drawingJSON = `{
  "version": 1, "width": 40, "height": 20,
  "commands": [
    {"kind": "rect", "color": "#ff0000", "width": 1, "points": [{"x": 2, "y": 2}, {"x": 10, "y": 10}]},
    {"kind": "line", "color": "#0000ff", "width": 2, "points": [{"x": 0, "y": 0}, {"x": 40, "y": 20}]}
  ]
}`

func TestBlueprint(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	f, err := app.Files.Upload(t.Context(), storage.UploadRequest{
		OrganizationID: orgID,
		ClientID:       clientID,
		Category:       models.CategoryBlueprint,
		Name:           "kitchen.png",
		Body:           &buf,
	})
	require.NoError(t, err)

	base := []string{
		fmt.Sprintf("--org=%d", orgID), fmt.Sprintf("--client=%d", clientID), fmt.Sprintf("--file=%d", f.ID),
	}
	run := func(sub string, args ...string) (string, error) {
		argv := append([]string{sub}, base...)
		out, _, err := clitest.ExecuteCLICommand(t, app, BlueprintCmd(), append(argv, args...))
		return out, err
	}

	doc := filepath.Join(t.TempDir(), "drawing.json")
	require.NoError(t, os.WriteFile(doc, []byte(drawingJSON), 0o600))

	out, err := run("import", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Visible commands: 2")

	out, err = run("undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Visible commands: 1")

	out, err = run("clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Visible commands: 0 (history 2)")

	png200 := filepath.Join(t.TempDir(), "out.png")
	_, err = run("export", "--out="+png200, "--width=200")
	require.NoError(t, err)

	fh, err := os.Open(png200)
	require.NoError(t, err)
	defer fh.Close()
	cfg, err := png.DecodeConfig(fh)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestBlueprint_RejectsBadDocument(t *testing.T) {
	db, app := clitest.SetupCLITest(t)
	orgID := clitest.CreateTestOrganization(t, db, "Acme")
	clientID, _ := clitest.CreateTestClient(t, db, orgID, "Alice")

	doc := filepath.Join(t.TempDir(), "drawing.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"version": 2, "commands": []}`), 0o600))

	_, _, err := clitest.ExecuteCLICommand(t, app, BlueprintCmd(), []string{
		"import", fmt.Sprintf("--org=%d", orgID), fmt.Sprintf("--client=%d", clientID), "--file=1", doc,
	})
	require.Error(t, err)
}
