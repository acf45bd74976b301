package group

import "github.com/mmynk/tripbite/internal/models"

// applyMembershipChange runs after every join, leave and removal, exactly once per
// change. Unless the group opted into PreventReset, recommendations computed for
// the old member set are discarded together with the picks made from them.
func applyMembershipChange(g *models.Group) {
	if g.PreventReset {
		return
	}
	g.RestaurantsByDay = nil
	g.Restaurants = nil
}
