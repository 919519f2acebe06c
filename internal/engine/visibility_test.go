package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func strPtr(s string) *string { return &s }

func TestNotificationVisibilityMatrix(t *testing.T) {
	requester := domain.UserRef{ID: "u-req", Name: "Requester"}
	client := domain.UserRef{ID: "u-client", Name: "Client"}
	tech := domain.UserRef{ID: "u-tech", Name: "Tech"}

	assigned := &domain.TicketSnapshot{
		ID:         "t1",
		CreatedBy:  requester,
		Client:     &client,
		AssignedTo: &tech,
	}
	unassigned := &domain.TicketSnapshot{
		ID:        "t2",
		CreatedBy: requester,
	}

	tests := []struct {
		name         string
		viewer       Viewer
		notification domain.Notification
		ticket       *domain.TicketSnapshot
		want         bool
	}{
		{
			name:         "admin sees everything",
			viewer:       Viewer{ID: "u-admin", Role: domain.RoleAdmin},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "admin sees entries for vanished tickets",
			viewer:       Viewer{ID: "u-admin", Role: domain.RoleAdmin},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       nil,
			want:         true,
		},
		{
			name:         "financial sees no ticket activity",
			viewer:       Viewer{ID: "u-fin", Role: domain.RoleFinancial},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         false,
		},
		{
			name:         "requester sees own ticket",
			viewer:       Viewer{ID: "u-req", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "client sees the ticket opened for them",
			viewer:       Viewer{ID: "u-client", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "unrelated user sees nothing",
			viewer:       Viewer{ID: "u-someone", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         false,
		},
		{
			name:         "user denied when ticket is gone",
			viewer:       Viewer{ID: "u-req", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       nil,
			want:         false,
		},
		{
			name:         "assignee sees held ticket",
			viewer:       Viewer{ID: "u-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "technician sees the unassigned pool",
			viewer:       Viewer{ID: "u-other-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       unassigned,
			want:         true,
		},
		{
			name:         "technician blind to a colleague's ticket",
			viewer:       Viewer{ID: "u-other-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         false,
		},
		{
			name:         "n2 follows the technician rule",
			viewer:       Viewer{ID: "u-tech", Role: domain.RoleTechnicianN2},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "assignment shown to the new assignee",
			viewer:       Viewer{ID: "u-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationTicketAssigned, UserID: strPtr("u-tech")},
			ticket:       assigned,
			want:         true,
		},
		{
			name:         "assignment hidden from other technicians even on a visible ticket",
			viewer:       Viewer{ID: "u-other-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationTicketAssigned, UserID: strPtr("u-tech")},
			ticket:       unassigned,
			want:         false,
		},
		{
			name:         "login visible to admin",
			viewer:       Viewer{ID: "u-admin", Role: domain.RoleAdmin},
			notification: domain.Notification{Type: domain.NotificationLogin, UserID: strPtr("u-tech")},
			want:         true,
		},
		{
			name:         "login visible to the subject",
			viewer:       Viewer{ID: "u-tech", Role: domain.RoleTechnician},
			notification: domain.Notification{Type: domain.NotificationLogin, UserID: strPtr("u-tech")},
			want:         true,
		},
		{
			name:         "login hidden from everyone else",
			viewer:       Viewer{ID: "u-req", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationLogin, UserID: strPtr("u-tech")},
			want:         false,
		},
		{
			name:         "logout visible to the subject",
			viewer:       Viewer{ID: "u-req", Role: domain.RoleUser},
			notification: domain.Notification{Type: domain.NotificationLogout, UserID: strPtr("u-req")},
			want:         true,
		},
		{
			name:         "unknown role sees nothing",
			viewer:       Viewer{ID: "u-x", Role: domain.Role("intern")},
			notification: domain.Notification{Type: domain.NotificationStatusChanged},
			ticket:       assigned,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotificationVisible(tt.viewer, tt.notification, tt.ticket)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventVisibilityFallsBackToEventSnapshot(t *testing.T) {
	requester := domain.UserRef{ID: "u-req", Name: "Requester"}
	event := events.ActivityEvent{
		Type:   events.EventStatusChanged,
		Ticket: domain.TicketSnapshot{ID: "t1", CreatedBy: requester},
	}

	// the ticket vanished from the store; the event's own snapshot
	// still answers who may see it
	assert.True(t, IsEventVisible(Viewer{ID: "u-req", Role: domain.RoleUser}, event, nil))
	assert.False(t, IsEventVisible(Viewer{ID: "u-other", Role: domain.RoleUser}, event, nil))
}

func TestEventVisibilityAssignmentSubject(t *testing.T) {
	tech := domain.UserRef{ID: "u-tech", Name: "Tech"}
	event := events.ActivityEvent{
		Type: events.EventTicketAssigned,
		Ticket: domain.TicketSnapshot{
			ID:         "t1",
			CreatedBy:  domain.UserRef{ID: "u-req"},
			AssignedTo: &tech,
		},
		Payload: events.TicketAssignedPayload{NewAssignee: &tech},
	}

	assert.True(t, IsEventVisible(Viewer{ID: "u-tech", Role: domain.RoleTechnician}, event, &event.Ticket))
	assert.False(t, IsEventVisible(Viewer{ID: "u-other-tech", Role: domain.RoleTechnician}, event, &event.Ticket))
}
