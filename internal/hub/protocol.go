package hub

import (
	"encoding/json"
	"time"
)

// Inbound message types.
const (
	TypePlayerJoin      = "player_join"
	TypeChat            = "chat"
	TypeAuctionStarted  = "auction_started"
	TypeAuctionEnded    = "auction_ended"
	TypeTrade           = "trade"
	TypeAttack          = "attack"
	TypeAdminStartEvent = "admin_start_event"
	TypeAdminAction     = "admin_action"
)

// Outbound message types.
const (
	TypePlayerJoined    = "player_joined"
	TypePlayersOnline   = "players_online"
	TypeTradeOffer      = "trade_offer"
	TypeAdminEventStart = "admin_event_start"
	TypeAdminEventEnd   = "admin_event_end"
	TypeWorldReseed     = "world_reseed"
)

// envelope carries just the type tag; the payload is re-decoded per type
// at the router boundary.
type envelope struct {
	Type string `json:"type"`
}

type joinMsg struct {
	Identity string `json:"identity"`
	RoomCode string `json:"roomCode"`
}

type chatMsg struct {
	RoomCode string `json:"roomCode"`
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

type auctionItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type auctionStartedMsg struct {
	RoomCode string       `json:"roomCode"`
	Identity string       `json:"identity"`
	Item     *auctionItem `json:"item"`
}

type auctionEndedMsg struct {
	RoomCode       string `json:"roomCode"`
	WinnerIdentity string `json:"winnerIdentity"`
	ItemName       string `json:"itemName"`
}

type tradeMsg struct {
	TargetID       string          `json:"targetId"`
	OfferedItems   json.RawMessage `json:"offeredItems"`
	RequestedItems json.RawMessage `json:"requestedItems"`
}

type attackMsg struct {
	RoomCode   string `json:"roomCode"`
	TargetID   string `json:"targetId"`
	Success    *bool  `json:"success"`
	StolenItem string `json:"stolenItem,omitempty"`
}

type adminStartEventMsg struct {
	RoomCode        string  `json:"roomCode"`
	AdminIdentity   string  `json:"adminIdentity"`
	EventName       string  `json:"eventName"`
	DurationMinutes float64 `json:"durationMinutes"`
}

type adminActionMsg struct {
	RoomCode      string          `json:"roomCode"`
	AdminIdentity string          `json:"adminIdentity"`
	Action        json.RawMessage `json:"action"`
}

// MemberInfo is one entry of a room's presence list.
type MemberInfo struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Outbound payloads. Every gameplay message carries a server-set unix-ms
// timestamp; the presence list is always a full replacement, never a delta.

type playerJoinedOut struct {
	Type      string `json:"type"`
	Identity  string `json:"identity"`
	Timestamp int64  `json:"timestamp"`
}

type presenceOut struct {
	Type    string       `json:"type"`
	Players []MemberInfo `json:"players"`
}

type chatOut struct {
	Type      string `json:"type"`
	Identity  string `json:"identity"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type auctionStartedOut struct {
	Type      string      `json:"type"`
	Identity  string      `json:"identity"`
	Item      auctionItem `json:"item"`
	Timestamp int64       `json:"timestamp"`
}

type auctionEndedOut struct {
	Type           string `json:"type"`
	WinnerIdentity string `json:"winnerIdentity"`
	ItemName       string `json:"itemName"`
	Timestamp      int64  `json:"timestamp"`
}

type tradeOfferOut struct {
	Type           string          `json:"type"`
	FromIdentity   string          `json:"fromIdentity"`
	OfferedItems   json.RawMessage `json:"offeredItems"`
	RequestedItems json.RawMessage `json:"requestedItems"`
	Timestamp      int64           `json:"timestamp"`
}

type attackOut struct {
	Type       string `json:"type"`
	Identity   string `json:"identity"`
	TargetID   string `json:"targetId"`
	Success    bool   `json:"success"`
	StolenItem string `json:"stolenItem,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

type adminEventOut struct {
	Type            string  `json:"type"`
	AdminIdentity   string  `json:"adminIdentity"`
	EventName       string  `json:"eventName"`
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
	Timestamp       int64   `json:"timestamp"`
}

type adminActionOut struct {
	Type          string          `json:"type"`
	AdminIdentity string          `json:"adminIdentity"`
	Action        json.RawMessage `json:"action"`
	Timestamp     int64           `json:"timestamp"`
}

type worldReseedOut struct {
	Type      string `json:"type"`
	Seed      int64  `json:"seed"`
	Timestamp int64  `json:"timestamp"`
}

func nowMillis() int64 { return time.Now().UnixMilli() }
