package models

// DateLayout is the storage and wire format of civil dates
const DateLayout = "2006-01-02"

// MaxNameLength bounds names of clients, organizations and inventory items
const MaxNameLength = 100
