package dto

type EventAckResponse struct {
	Ok bool `json:"ok"`
}
