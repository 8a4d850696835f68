package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/project"
	"github.com/kiassist/kiassist/internal/recent"
	"github.com/kiassist/kiassist/internal/schematic"
	"github.com/kiassist/kiassist/internal/wizard"
)

// KeyResult is returned by SetAPIKey. Warning is set when the key could only
// be kept in memory.
type KeyResult struct {
	Result
	Warning string `json:"warning,omitempty"`
}

// CheckAPIKey reports whether a key is available from any source.
func (a *App) CheckAPIKey() bool {
	return a.creds.Has()
}

// GetAPIKey returns the key and whether one was found.
func (a *App) GetAPIKey() (string, bool) {
	return a.creds.Get()
}

func (a *App) SetAPIKey(key string) KeyResult {
	warning, err := a.creds.Set(key)
	if err != nil {
		return KeyResult{Result: fail(err.Error())}
	}
	return KeyResult{Result: ok(), Warning: warning}
}

func (a *App) ClearAPIKey() Result {
	a.creds.Clear()
	return ok()
}

// MessageResult carries a chat reply.
type MessageResult struct {
	Result
	Response string `json:"response,omitempty"`
}

// SendMessage sends a free-form chat message. An empty model selects the
// configured default.
func (a *App) SendMessage(ctx context.Context, message, model string) MessageResult {
	text, errMsg := a.send(ctx, message, model)
	if errMsg != "" {
		return MessageResult{Result: fail(errMsg)}
	}
	return MessageResult{Result: ok(), Response: text}
}

// RecentProjects lists existing recently opened projects.
func (a *App) RecentProjects() []recent.Entry {
	if a.recent == nil {
		return []recent.Entry{}
	}
	return a.recent.List()
}

// RecentResult is returned by AddRecentProject.
type RecentResult struct {
	Result
	Project *recent.Entry `json:"project,omitempty"`
}

// AddRecentProject validates path and records its project file.
func (a *App) AddRecentProject(path string) RecentResult {
	if a.recent == nil {
		return RecentResult{Result: fail("recent projects are not available")}
	}
	v := project.Validate(path)
	if !v.Valid {
		return RecentResult{Result: fail(v.Error)}
	}
	e := a.recent.Add(v.Info.ProjectPath)
	return RecentResult{Result: ok(), Project: &e}
}

func (a *App) RemoveRecentProject(path string) Result {
	if a.recent != nil {
		a.recent.Remove(path)
	}
	return ok()
}

func (a *App) ClearRecentProjects() Result {
	if a.recent != nil {
		a.recent.Clear()
	}
	return ok()
}

func (a *App) ValidateProject(path string) project.Result {
	return project.Validate(path)
}

// WizardQuestions returns the default question catalogue.
func (a *App) WizardQuestions() []wizard.Question {
	return wizard.DefaultQuestions()
}

// QuestionsResult carries refined wizard questions.
type QuestionsResult struct {
	Result
	Questions []wizard.Question `json:"questions,omitempty"`
}

// wizardModel picks the model for wizard requests: explicit, then the agent
// file's, then the configured default.
func (a *App) wizardModel(model string) string {
	if model != "" {
		return model
	}
	if a.agent.Meta.Model != "" {
		return a.agent.Meta.Model
	}
	return a.model
}

// RefineQuestions tailors the remaining wizard questions to the initial
// answers. Unparseable model output yields the default questions.
func (a *App) RefineQuestions(ctx context.Context, answers map[string]string, model string) QuestionsResult {
	text, errMsg := a.send(ctx, a.prompts.RefinePrompt(answers), a.wizardModel(model))
	if errMsg != "" {
		return QuestionsResult{Result: fail(errMsg)}
	}
	return QuestionsResult{Result: ok(), Questions: wizard.ParseRefinedQuestions(text)}
}

// DocumentsResult carries synthesized requirements documents.
type DocumentsResult struct {
	Result
	Requirements string `json:"requirements,omitempty"`
	Todo         string `json:"todo,omitempty"`
}

// ErrNoDocuments is reported when the model reply held neither document.
const ErrNoDocuments = "Failed to parse requirements from model response"

// SynthesizeRequirements turns the wizard answers into requirements.md and
// todo.md content.
func (a *App) SynthesizeRequirements(ctx context.Context, questions []wizard.Question, answers map[string]string, projectName, model string) DocumentsResult {
	if len(questions) == 0 {
		questions = wizard.DefaultQuestions()
	}
	prompt := a.prompts.SynthesizePrompt(questions, answers, projectName)
	text, errMsg := a.send(ctx, prompt, a.wizardModel(model))
	if errMsg != "" {
		return DocumentsResult{Result: fail(errMsg)}
	}

	docs := wizard.ParseSynthesizedDocs(text)
	if docs.Empty() {
		a.logger.Warn("model reply held no documents", zap.Int("reply_len", len(text)))
		return DocumentsResult{Result: fail(ErrNoDocuments)}
	}
	return DocumentsResult{Result: ok(), Requirements: docs.Requirements, Todo: docs.Todo}
}

// RequirementsStatus reports on the wizard documents of a project.
type RequirementsStatus struct {
	Result
	wizard.Status
}

func (a *App) CheckRequirements(projectDir string) RequirementsStatus {
	st, err := wizard.CheckRequirements(projectDir)
	if err != nil {
		return RequirementsStatus{Result: fail(err.Error())}
	}
	return RequirementsStatus{Result: ok(), Status: st}
}

// ContentResult carries a document's text.
type ContentResult struct {
	Result
	Content string `json:"content,omitempty"`
}

func (a *App) GetRequirements(projectDir string) ContentResult {
	content, err := wizard.ReadRequirements(projectDir)
	if err != nil {
		return ContentResult{Result: fail(err.Error())}
	}
	return ContentResult{Result: ok(), Content: content}
}

// SaveResult lists the files written.
type SaveResult struct {
	Result
	SavedFiles []string `json:"saved_files,omitempty"`
}

func (a *App) SaveRequirements(projectDir, requirements, todo string) SaveResult {
	saved, err := wizard.SaveRequirements(projectDir, requirements, todo)
	if err != nil {
		return SaveResult{Result: fail(err.Error()), SavedFiles: saved}
	}
	a.logger.Info("saved requirements", zap.Strings("files", saved))
	return SaveResult{Result: ok(), SavedFiles: saved}
}

// NoteResult describes a schematic note injection.
type NoteResult struct {
	Result
	schematic.Injection
}

// InjectTestNote adds a visible note to the project's root schematic.
func (a *App) InjectTestNote(projectPath, text string) NoteResult {
	res, err := schematic.InjectNote(strings.TrimSpace(projectPath), text)
	if err != nil {
		return NoteResult{Result: fail(err.Error())}
	}
	a.logger.Info("injected schematic note", zap.String("schematic", res.SchematicPath), zap.Bool("created", res.CreatedNew))
	return NoteResult{Result: ok(), Injection: res}
}
