package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/notmat/api/internal/middleware"
	"github.com/notmat/api/internal/model"
	"github.com/notmat/api/internal/service"
	"github.com/notmat/api/internal/store"
)

const testJWTSecret = "test-secret"

// stubTransformer returns a fixed result, or an error when set.
type stubTransformer struct {
	err error
}

func (t *stubTransformer) TransformNote(ctx context.Context, rawText string, options model.NoteOptions) (*model.NoteResult, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &model.NoteResult{
		Meta: model.NoteMeta{DetectedLanguage: "en"},
		Exports: model.NoteExports{
			Markdown:  "# Notes\n- " + rawText,
			HTML:      "<ul><li>" + rawText + "</li></ul>",
			PlainText: rawText,
		},
	}, nil
}

// inlineBackend processes jobs synchronously so handler tests can poll
// terminal states immediately after submission.
type inlineBackend struct {
	svc *service.NoteService
}

func (b *inlineBackend) Enqueue(ctx context.Context, jobID string) error {
	_ = b.svc.ProcessJob(ctx, jobID)
	return nil
}
func (b *inlineBackend) Start() error { return nil }
func (b *inlineBackend) Shutdown()    {}

// setupApp builds a Fiber app wired like main.go, with the in-memory
// store and a synchronous backend.
func setupApp(t *testing.T, transformer service.Transformer) *fiber.App {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	svc := service.NewNoteService(st, transformer, nil, "test-model", log)
	svc.SetBackend(&inlineBackend{svc: svc})

	validate := validator.New()
	noteHandler := NewNoteHandler(svc, validate)
	cacheHandler := NewCacheHandler(svc)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(nil) // disabled

	app := fiber.New()
	api := app.Group("/api/v1", authMiddleware.Identify())

	notes := api.Group("/notes")
	notes.Post("/", rateLimiter.NotesLimit(10000), noteHandler.Create)
	notes.Get("/", noteHandler.List)
	notes.Get("/:revisionId/status", noteHandler.Status)
	notes.Get("/:revisionId/result", noteHandler.Result)
	notes.Get("/:revisionId/export", noteHandler.Export)

	api.Post("/cache/invalidate", cacheHandler.Invalidate)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, bodyReader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &result), "body: %s", string(b))
	return result
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// submitNote posts a note and returns the revision id.
func submitNote(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/notes/", body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := parseJSON(t, resp)
	id, _ := result["revisionId"].(string)
	require.NotEmpty(t, id)
	return id
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %v", result)
	code, _ := errObj["code"].(string)
	return code
}
