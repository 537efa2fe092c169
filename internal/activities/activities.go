// Package activities contains the Temporal activity implementations
// the run workflow sequences. Activities do all the I/O: LLM calls,
// git, the test runner, the hosting API, and run history. Inputs and
// outputs are plain serializable structs.
//
// Failures that the workflow routes around (a patch that does not
// apply, a push that is rejected) are reported in outputs rather than
// as activity errors, so Temporal's retry policy is reserved for
// transient faults.
package activities

import (
	"context"

	"github.com/mfateev/autodev-temporal-go/internal/llm"
	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/patch"
	"github.com/mfateev/autodev-temporal-go/internal/personas"
)

// ---------------------------------------------------------------------------
// Persona loading
// ---------------------------------------------------------------------------

// LoadPersonasInput is the input for the LoadPersonas activity.
type LoadPersonasInput struct {
	Path string `json:"path,omitempty"`
}

// LoadPersonasOutput is the output from the LoadPersonas activity.
type LoadPersonasOutput struct {
	Personas []models.Persona `json:"personas"`
}

// PersonaActivities contains persona-loading activities.
type PersonaActivities struct{}

// NewPersonaActivities creates a new PersonaActivities instance.
func NewPersonaActivities() *PersonaActivities {
	return &PersonaActivities{}
}

// LoadPersonas reads the persona set from the worker's file system.
// Runs worker-side so the personas file lives next to the checkout.
func (a *PersonaActivities) LoadPersonas(_ context.Context, input LoadPersonasInput) (LoadPersonasOutput, error) {
	ps, err := personas.Load(input.Path)
	if err != nil {
		return LoadPersonasOutput{}, err
	}
	return LoadPersonasOutput{Personas: ps}, nil
}

// ---------------------------------------------------------------------------
// Patch generation
// ---------------------------------------------------------------------------

// GeneratePatchInput is the input for the GeneratePatch activity.
type GeneratePatchInput struct {
	Prompt   string                `json:"prompt"`
	Provider models.ProviderConfig `json:"provider"`
}

// GeneratePatchOutput is the output from the GeneratePatch activity.
// Found is false when the response carried no usable diff block; the
// workflow records a skip and moves on.
type GeneratePatchOutput struct {
	Found    bool             `json:"found"`
	Patch    models.PatchInfo `json:"patch,omitempty"`
	RawBytes int              `json:"raw_bytes"`
}

// LLMActivities contains the patch-generation activity.
type LLMActivities struct {
	client llm.Client
}

// NewLLMActivities creates LLM activities backed by the given client.
func NewLLMActivities(client llm.Client) *LLMActivities {
	return &LLMActivities{client: client}
}

// GeneratePatch calls the configured provider and extracts the diff
// block from its response.
func (a *LLMActivities) GeneratePatch(ctx context.Context, input GeneratePatchInput) (GeneratePatchOutput, error) {
	resp, err := a.client.Call(ctx, llm.Request{
		Prompt: input.Prompt,
		Config: input.Provider,
	})
	if err != nil {
		return GeneratePatchOutput{}, err
	}

	diffText, found := patch.Extract(resp.Content)
	out := GeneratePatchOutput{RawBytes: len(resp.Content), Found: found}
	if found {
		out.Patch = patch.Info(diffText)
	}
	return out, nil
}
