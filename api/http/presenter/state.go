package presenter

import (
	"github.com/artem13815/copilot/pkg/engine"
	"github.com/artem13815/copilot/pkg/session"
)

// StateResponse — снимок состояния workflow, каким его видит фронт.
type StateResponse struct {
	Session      session.Session `json:"session"`
	Step         string          `json:"step"`
	Progress     int             `json:"progress"`
	ShowProgress bool            `json:"showProgress"`
	Busy         bool            `json:"busy"`
	LastError    string          `json:"lastError,omitempty"`
}

func NewState(st engine.State) StateResponse {
	return StateResponse{
		Session:      st.Session,
		Step:         string(st.Step),
		Progress:     st.Progress,
		ShowProgress: st.ShowBar,
		Busy:         st.Busy,
		LastError:    st.LastError,
	}
}
