package intake

import "context"

// EventKind es el tipo de evento entrante.
type EventKind int

const (
	EventStart  EventKind = iota // el usuario entra al flujo ("New Trade")
	EventChoice                  // botón pulsado; Data = payload
	EventText                    // mensaje de texto; Data = texto
	EventPhoto                   // foto subida; Data = referencia del archivo
	EventCancel                  // el usuario abandona el flujo
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventChoice:
		return "choice"
	case EventText:
		return "text"
	case EventPhoto:
		return "photo"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Event es un evento de transporte asociado a una sesión (chat).
type Event struct {
	ChatID    int64
	MessageID int // mensaje que originó el evento, para responder en hilo
	Kind      EventKind
	Data      string
}

// Handler consume eventos. Lo implementa Flow; los transportes despachan a él.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapta una función a Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle llama a fn(ctx, ev).
func (fn HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return fn(ctx, ev)
}
