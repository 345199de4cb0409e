package engine

import (
	"github.com/google/uuid"

	"github.com/nao1215/footprint/internal/model"
)

// ProbeTask binds a subject to one endpoint. It is created by the
// scheduler and consumed exactly once.
type ProbeTask struct {
	ID       string
	Index    int
	Subject  string
	Endpoint model.EndpointDescriptor
}

func newProbeTask(subject string, index int, ep model.EndpointDescriptor) ProbeTask {
	return ProbeTask{
		ID:       uuid.NewString(),
		Index:    index,
		Subject:  subject,
		Endpoint: ep,
	}
}

// url returns the concrete URL for logging; templates were validated with the catalog.
func (t ProbeTask) url() string {
	u, _ := t.Endpoint.URL(t.Subject)
	return u
}
