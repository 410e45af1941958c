package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrein-exzellent/lagerhub-backend/pkg/db/models"
	"github.com/astrein-exzellent/lagerhub-backend/pkg/enums"
)

// itemDTO is the wire shape of a stock ledger row. Available is derived
// server-side so clients never compute it themselves.
type itemDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	ItemType    enums.ItemType   `json:"item_type"`
	Category    string           `json:"category"`
	Warehouse   string           `json:"warehouse"`
	Condition   string           `json:"condition,omitempty"`
	Status      enums.ItemStatus `json:"status"`
	Stock       int64            `json:"stock"`
	ReservedQty int64            `json:"reserved_qty"`
	Available   int64            `json:"available"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toItemDTO(item models.Item) itemDTO {
	return itemDTO{
		ID:          item.ID,
		Name:        item.Name,
		ItemType:    item.ItemType,
		Category:    item.Category,
		Warehouse:   item.Warehouse,
		Condition:   item.Condition,
		Status:      item.Status,
		Stock:       item.Stock,
		ReservedQty: item.ReservedQty,
		Available:   item.Available(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toItemDTOs(items []models.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toItemDTO(item))
	}
	return out
}

type reservationDTO struct {
	ID         uuid.UUID               `json:"id"`
	ItemID     string                  `json:"item_id"`
	Qty        int64                   `json:"qty"`
	ForDate    time.Time               `json:"for_date"`
	ForWhom    *string                 `json:"for_whom,omitempty"`
	Status     enums.ReservationStatus `json:"status"`
	ReservedBy uuid.UUID               `json:"reserved_by"`
	CreatedAt  time.Time               `json:"created_at"`
}

func toReservationDTO(res models.Reservation) reservationDTO {
	return reservationDTO{
		ID:         res.ID,
		ItemID:     res.ItemID,
		Qty:        res.Qty,
		ForDate:    res.ForDate,
		ForWhom:    res.ForWhom,
		Status:     res.Status,
		ReservedBy: res.ReservedBy,
		CreatedAt:  res.CreatedAt,
	}
}

func toReservationDTOs(rows []models.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReservationDTO(row))
	}
	return out
}

type reservationHistoryDTO struct {
	ID            uuid.UUID               `json:"id"`
	ReservationID uuid.UUID               `json:"reservation_id"`
	ItemID        string                  `json:"item_id"`
	Qty           int64                   `json:"qty"`
	ForDate       time.Time               `json:"for_date"`
	ForWhom       *string                 `json:"for_whom,omitempty"`
	Status        enums.ReservationStatus `json:"status"`
	ReservedBy    uuid.UUID               `json:"reserved_by"`
	ReservedAt    time.Time               `json:"reserved_at"`
	ResolvedAt    time.Time               `json:"resolved_at"`
}

func toReservationHistoryDTO(rec models.ReservationHistory) reservationHistoryDTO {
	return reservationHistoryDTO{
		ID:            rec.ID,
		ReservationID: rec.ReservationID,
		ItemID:        rec.ItemID,
		Qty:           rec.Qty,
		ForDate:       rec.ForDate,
		ForWhom:       rec.ForWhom,
		Status:        rec.Status,
		ReservedBy:    rec.ReservedBy,
		ReservedAt:    rec.ReservedAt,
		ResolvedAt:    rec.ResolvedAt,
	}
}

func toReservationHistoryDTOs(rows []models.ReservationHistory) []reservationHistoryDTO {
	out := make([]reservationHistoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReservationHistoryDTO(row))
	}
	return out
}

type movementDTO struct {
	ID            uuid.UUID          `json:"id"`
	ItemID        string             `json:"item_id"`
	ItemName      string             `json:"item_name"`
	Qty           int64              `json:"qty"`
	PreviousStock int64              `json:"previous_stock"`
	NewStock      int64              `json:"new_stock"`
	MovementType  enums.MovementType `json:"movement_type"`
	ActorID       uuid.UUID          `json:"actor_id"`
	ActorName     string             `json:"actor_name"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toMovementDTO(m models.StockMovement) movementDTO {
	return movementDTO{
		ID:            m.ID,
		ItemID:        m.ItemID,
		ItemName:      m.ItemName,
		Qty:           m.Qty,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		MovementType:  m.MovementType,
		ActorID:       m.ActorID,
		ActorName:     m.ActorName,
		CreatedAt:     m.CreatedAt,
	}
}

func toMovementDTOs(rows []models.StockMovement) []movementDTO {
	out := make([]movementDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMovementDTO(row))
	}
	return out
}

type ticketDTO struct {
	ID           uuid.UUID          `json:"id"`
	TicketNumber string             `json:"ticket_number"`
	UserID       uuid.UUID          `json:"user_id"`
	UserName     string             `json:"user_name"`
	Subject      string             `json:"subject"`
	Status       enums.TicketStatus `json:"status"`
	Language     enums.ChatLanguage `json:"language"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func toTicketDTO(ticket models.SupportTicket) ticketDTO {
	return ticketDTO{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		UserID:       ticket.UserID,
		UserName:     ticket.UserName,
		Subject:      ticket.Subject,
		Status:       ticket.Status,
		Language:     ticket.Language,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func toTicketDTOs(rows []models.SupportTicket) []ticketDTO {
	out := make([]ticketDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTicketDTO(row))
	}
	return out
}

type chatMessageDTO struct {
	ID        uuid.UUID        `json:"id"`
	TicketID  uuid.UUID        `json:"ticket_id"`
	Sender    enums.ChatSender `json:"sender"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
}

func toChatMessageDTO(msg models.ChatMessage) chatMessageDTO {
	return chatMessageDTO{
		ID:        msg.ID,
		TicketID:  msg.TicketID,
		Sender:    msg.Sender,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}
}

func toChatMessageDTOs(rows []models.ChatMessage) []chatMessageDTO {
	out := make([]chatMessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toChatMessageDTO(row))
	}
	return out
}
