package yamlupdate

import "github.com/charmbracelet/log"

// Option configures an update or format call.
type Option func(*options)

type options struct {
	keepArrayIndent bool
	updateAll       bool
	logger          *log.Logger
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// WithKeepArrayIndent keeps block sequences indented one level under their
// parent key ("key:\n  - a") instead of the default compact form ("key:\n- a").
func WithKeepArrayIndent(keep bool) Option {
	return func(o *options) { o.keepArrayIndent = keep }
}

// WithUpdateAll makes UpdateDocuments apply each key to every non-empty
// document of the stream instead of only the first one that holds the key.
func WithUpdateAll(all bool) Option {
	return func(o *options) { o.updateAll = all }
}

// WithLogger routes debug records to l. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}
