package db

import (
	"errors"

	"github.com/tablesideapp/tableside/internal/models"
)

type DraftOrder = models.DraftOrder
type DraftLine = models.DraftLine

var (
	ErrDraftNotFound  = errors.New("draft order not found")
	ErrDraftForbidden = errors.New("draft order belongs to another employee")
)
