//go:build unix

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kiassist/kiassist/internal/kicad"
	"github.com/kiassist/kiassist/internal/limits"
	"github.com/kiassist/kiassist/internal/recent"
	"github.com/kiassist/kiassist/internal/wizard"
)

// Request/Response types

type Empty struct{}

type EchoRequest struct {
	Message string `json:"message"`
}

type EchoResponse struct {
	Message string `json:"message"`
}

type InstancesResponse struct {
	Instances []kicad.Instance `json:"instances"`
}

type HasKeyResponse struct {
	HasKey bool `json:"has_key"`
}

type APIKeyResponse struct {
	APIKey *string `json:"api_key"`
}

type SetAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

type RecentProjectsResponse struct {
	Projects []recent.Entry `json:"projects"`
}

type PathRequest struct {
	Path string `json:"path"`
}

type QuestionsResponse struct {
	Questions []wizard.Question `json:"questions"`
}

type RefineRequest struct {
	Answers map[string]string `json:"answers"`
	Model   string            `json:"model"`
}

type SynthesizeRequest struct {
	Questions   []wizard.Question `json:"questions"`
	Answers     map[string]string `json:"answers"`
	ProjectName string            `json:"project_name"`
	Model       string            `json:"model"`
}

type ProjectDirRequest struct {
	ProjectDir string `json:"project_dir"`
}

type SaveRequirementsRequest struct {
	ProjectDir   string `json:"project_dir"`
	Requirements string `json:"requirements"`
	Todo         string `json:"todo"`
}

type InjectNoteRequest struct {
	ProjectPath string `json:"project_path"`
	Text        string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// endpoint adapts a typed facade call to an HTTP handler. Every endpoint is
// POST with an optional JSON body.
func endpoint[Req any](fn func(context.Context, Req) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		var req Req
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.JSON))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		writeJSON(w, fn(r.Context(), req), http.StatusOK)
	}
}

// endpoints maps /api/<name> to facade methods.
func (d *Daemon) endpoints() map[string]http.HandlerFunc {
	a := d.app
	return map[string]http.HandlerFunc{
		"echo": endpoint(func(_ context.Context, req EchoRequest) any {
			return EchoResponse{Message: a.Echo(req.Message)}
		}),
		"detect_instances": endpoint(func(context.Context, Empty) any {
			return InstancesResponse{Instances: a.DetectInstances()}
		}),
		"check_api_key": endpoint(func(context.Context, Empty) any {
			return HasKeyResponse{HasKey: a.CheckAPIKey()}
		}),
		"get_api_key": endpoint(func(context.Context, Empty) any {
			if key, found := a.GetAPIKey(); found {
				return APIKeyResponse{APIKey: &key}
			}
			return APIKeyResponse{}
		}),
		"set_api_key": endpoint(func(_ context.Context, req SetAPIKeyRequest) any {
			return a.SetAPIKey(req.APIKey)
		}),
		"clear_api_key": endpoint(func(context.Context, Empty) any {
			return a.ClearAPIKey()
		}),
		"send_message": endpoint(func(ctx context.Context, req SendMessageRequest) any {
			return a.SendMessage(ctx, req.Message, req.Model)
		}),
		"recent_projects": endpoint(func(context.Context, Empty) any {
			return RecentProjectsResponse{Projects: a.RecentProjects()}
		}),
		"add_recent_project": endpoint(func(_ context.Context, req PathRequest) any {
			return a.AddRecentProject(req.Path)
		}),
		"remove_recent_project": endpoint(func(_ context.Context, req PathRequest) any {
			return a.RemoveRecentProject(req.Path)
		}),
		"clear_recent_projects": endpoint(func(context.Context, Empty) any {
			return a.ClearRecentProjects()
		}),
		"validate_project": endpoint(func(_ context.Context, req PathRequest) any {
			return a.ValidateProject(req.Path)
		}),
		"wizard_questions": endpoint(func(context.Context, Empty) any {
			return QuestionsResponse{Questions: a.WizardQuestions()}
		}),
		"refine_questions": endpoint(func(ctx context.Context, req RefineRequest) any {
			return a.RefineQuestions(ctx, req.Answers, req.Model)
		}),
		"synthesize_requirements": endpoint(func(ctx context.Context, req SynthesizeRequest) any {
			return a.SynthesizeRequirements(ctx, req.Questions, req.Answers, req.ProjectName, req.Model)
		}),
		"check_requirements": endpoint(func(_ context.Context, req ProjectDirRequest) any {
			return a.CheckRequirements(req.ProjectDir)
		}),
		"get_requirements": endpoint(func(_ context.Context, req ProjectDirRequest) any {
			return a.GetRequirements(req.ProjectDir)
		}),
		"save_requirements": endpoint(func(_ context.Context, req SaveRequirementsRequest) any {
			return a.SaveRequirements(req.ProjectDir, req.Requirements, req.Todo)
		}),
		"inject_test_note": endpoint(func(_ context.Context, req InjectNoteRequest) any {
			return a.InjectTestNote(req.ProjectPath, req.Text)
		}),
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, data any, status int) {
	buf, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, ErrorResponse{Error: message}, status)
}
