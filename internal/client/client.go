// Package client provides the HTTP/JSON client that dockctl uses to talk
// to a running receiving server.
package client

import (
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/presence"
)

// PalletsResponse is the reply from the batch pallet listing endpoint.
type PalletsResponse struct {
	Pallets []*model.Pallet `json:"pallets"`
	Count   int             `json:"count"`
}

// ReceiversResponse is the reply from the batch receivers endpoint.
type ReceiversResponse struct {
	Receivers []presence.Entry `json:"receivers"`
	Count     int              `json:"count"`
}

// RosterResponse is the reply from the operator roster endpoint.
type RosterResponse struct {
	Operators []presence.Entry `json:"operators"`
}
