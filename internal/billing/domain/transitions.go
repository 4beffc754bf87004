package domain

// Transition is a directed edge of the subscription state machine.
type Transition struct {
	From SubscriptionStatus
	To   SubscriptionStatus
}

// Checkout is the only stored transition. Expiry edges are derived from time
// and never written by a command.
var validTransitions = map[Transition]bool{
	{SubscriptionTrial, SubscriptionActive}:   true,
	{SubscriptionActive, SubscriptionActive}:  true,
	{SubscriptionExpired, SubscriptionActive}: true,
	{SubscriptionTrial, SubscriptionExpired}:  true,
	{SubscriptionActive, SubscriptionExpired}: true,
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to SubscriptionStatus) bool {
	return validTransitions[Transition{From: from, To: to}]
}
