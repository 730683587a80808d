package registration

// Attendee is the person a registration belongs to. Phone is the raw number
// as entered; normalization happens at send time.
type Attendee struct {
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Phone     string `json:"phone" bson:"phone"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
}

const (
	StatusRegistered = "registered"
	StatusWaitlisted = "waitlisted"
	StatusCancelled  = "cancelled"
)

type Registration struct {
	ID       string   `json:"id" bson:"_id"`
	EventID  string   `json:"event_id" bson:"event_id"`
	Status   string   `json:"status" bson:"status"`
	Attendee Attendee `json:"attendee" bson:"attendee"`
}

// FullName joins the attendee's names for logging and message composition.
func (r *Registration) FullName() string {
	if r.Attendee.LastName == "" {
		return r.Attendee.FirstName
	}
	return r.Attendee.FirstName + " " + r.Attendee.LastName
}
