package bridge

import "github.com/nao1215/vegancheck/internal/model"

// Kind is the type of a message.
type Kind string

// Message kinds.
const (
	// KindContentForAnalysis carries a page snapshot to the background.
	KindContentForAnalysis Kind = "CONTENT_FOR_ANALYSIS"

	// KindTriggerAnalysis asks the page to extract and send its content.
	KindTriggerAnalysis Kind = "TRIGGER_ANALYSIS"

	// KindToggleLogging flips the page's logging switch.
	KindToggleLogging Kind = "TOGGLE_LOGGING"

	// KindSetLogging sets the page's logging switch to Enabled.
	KindSetLogging Kind = "SET_LOGGING"

	// KindGetLoggingState reads the page's logging switch.
	KindGetLoggingState Kind = "GET_LOGGING_STATE"
)

// Response statuses.
const (
	StatusReceived          = "received"
	StatusIgnored           = "ignored"
	StatusError             = "error"
	StatusAnalysisTriggered = "analysis_triggered"
	StatusLoggingToggled    = "logging_toggled"
	StatusLoggingSet        = "logging_set"
	StatusLoggingState      = "logging_state"
)

// Well-known endpoint and port names.
const (
	EndpointPage       = "page"
	EndpointBackground = "background"
	EndpointPanel      = "panel"

	// PanelPort is the name of the port the panel opens to the background.
	PanelPort = "popup"
)

// Message is a one-shot request between contexts.
type Message struct {
	Kind    Kind               `json:"type"`
	Content *model.PageContent `json:"content,omitempty"`
	Enabled *bool              `json:"enabled,omitempty"`
}

// Response acknowledges a Message.
type Response struct {
	Status  string `json:"status"`
	Enabled *bool  `json:"enabled,omitempty"`
}
