package handlers

const (
	ErrInvalidBody           = "Invalid request body"
	ErrUnauthorized          = "Unauthorized"
	ErrNotFound              = "Not Found"
	ErrMethodNotAllowed      = "Method Not Allowed"
	ErrTooManyRequests       = "Too many requests, please try again later"
	ErrInternalServerErrorUC = "Internal Server Error"
)

// Path variables
const (
	varEmail    = "email"
	varUserID   = "userId"
	varInfantID = "infantId"
	varFeedID   = "feedId"
	varDiaperID = "diaperId"
	varStart    = "start"
	varEnd      = "end"
)
