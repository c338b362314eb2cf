package navbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItems(t *testing.T) {
	items := Items("/pages/member/schedule.html")

	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
		assert.Equal(t, it.Label == "Schedule", it.Active, it.Label)
	}
	assert.Equal(t, []string{"Home", "Check In", "Schedule", "Settings"}, labels)
	assert.Equal(t, "/pages/member/qr-scanner.html", items[1].Href)
}

func TestItemsNothingActive(t *testing.T) {
	for _, it := range Items("/pages/auth/login.html") {
		assert.False(t, it.Active, it.Label)
	}
}
