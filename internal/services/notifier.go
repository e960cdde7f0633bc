package services

// Notifier pushes state changes to connected clients. The websocket hub implements it.
type Notifier interface {
	NotifyUser(userID, action string, payload interface{})
	Broadcast(action string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(string, string, interface{}) {}
func (noopNotifier) Broadcast(string, interface{})          {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// Websocket actions sent by the services.
const (
	ActionProgressUpdated    = "progress.updated"
	ActionLeaderboardUpdated = "leaderboard.updated"
	ActionHabitsUpdated      = "habits.updated"
)
