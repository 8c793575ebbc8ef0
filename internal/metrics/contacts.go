package metrics

// Contacts counts steps that ended with at least one active contact.
type Contacts struct {
	name  string
	steps int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string {
	return c.name
}

func (c *Contacts) Observe(s Sample) {
	if s.Contacts > 0 {
		c.steps++
	}
}

func (c *Contacts) Value() float64 {
	return float64(c.steps)
}

func (c *Contacts) Reset() {
	c.steps = 0
}
