package errcode

// Code is a stable, observer-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidParams  Code = "invalid_params"
	InvalidConfig  Code = "invalid_config"
	InvalidState   Code = "invalid_state"
	Unsupported    Code = "unsupported"
	Timeout        Code = "timeout"
	NotReady       Code = "not_ready"
	Rejected       Code = "rejected"
	QueueFull      Code = "queue_full"
	SensorFault    Code = "sensor_fault"
	ADCFault       Code = "adc_fault"
	PublishFailed  Code = "publish_failed"
	NotConnected   Code = "not_connected"
	HardwareFailed Code = "hardware_failed"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.Timeout) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E; a nil err with an empty msg still yields the code.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// New builds an *E carrying a message instead of a cause.
func New(c Code, op, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if inner := u.Unwrap(); inner != nil {
			return Of(inner)
		}
	}
	// errors.Join: first member that carries a code.
	type multi interface{ Unwrap() []error }
	if m, ok := err.(multi); ok {
		for _, e := range m.Unwrap() {
			if c := Of(e); c != Error {
				return c
			}
		}
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code. Errors that already
// carry a code keep it; everything else is a sensor fault.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	return SensorFault
}
