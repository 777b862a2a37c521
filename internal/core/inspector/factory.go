package inspector

const FactoryDisplayName = "Type Inspector"

// Factory creates inspector widgets for sessions.
type Factory struct {
	host Host
}

func NewFactory(host Host) *Factory {
	return &Factory{host: host}
}

func (f *Factory) ID() string { return WidgetID }

func (f *Factory) DisplayName() string { return FactoryDisplayName }

func (f *Factory) CreateWidget(session *Session) *Widget {
	return NewWidget(session, f.host)
}

func (f *Factory) DisposeWidget(w *Widget) {
	if w != nil {
		w.Dispose()
	}
}
