package service

import (
	"context"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/google/uuid"
)

func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (model.Dashboard, error) {
	views, err := s.repo.ListRequests(ctx, userID)
	if err != nil {
		return model.Dashboard{}, err
	}
	return BuildDashboard(userID, views), nil
}

// BuildDashboard splits the caller's requests into incoming (caller owns the
// book) and outgoing (caller asked for it), keeping the input order.
func BuildDashboard(userID uuid.UUID, views []model.RequestView) model.Dashboard {
	d := model.Dashboard{
		Incoming: make([]model.RequestCard, 0),
		Outgoing: make([]model.RequestCard, 0),
	}
	for _, v := range views {
		switch userID {
		case v.Owner.ID:
			d.Incoming = append(d.Incoming, model.RequestCard{RequestView: v, Role: model.RoleOwner, Actions: Actions(v, model.RoleOwner)})
		case v.Requester.ID:
			d.Outgoing = append(d.Outgoing, model.RequestCard{RequestView: v, Role: model.RoleRequester, Actions: Actions(v, model.RoleRequester)})
		}
	}
	return d
}

// Actions lists what the given side may do with the request right now.
func Actions(v model.RequestView, role model.Role) []model.Action {
	actions := make([]model.Action, 0, 3)
	switch v.Status {
	case model.StatusPending:
		if role == model.RoleOwner {
			actions = append(actions,
				model.Action{Name: model.ActionAccept},
				model.Action{Name: model.ActionReject},
			)
		}
	case model.StatusAccepted:
		if role == model.RoleOwner && !v.IsDelivered {
			actions = append(actions, model.Action{Name: model.ActionDeliver, Confirm: true})
		}
		actions = append(actions,
			model.Action{Name: model.ActionContact},
			model.Action{Name: model.ActionChat},
		)
	}
	return actions
}
