package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
)

func formatRent(v float64) string {
	return fmt.Sprintf("%.0f/month", v)
}

func statusLabel(s models.ListingStatus) string {
	if s == models.StatusAvailable {
		return "Available"
	}
	return "Rented"
}

// printCards lists cards one per line. The ID is what 'show' takes, so cards
// the server marks as not navigable get a placeholder instead.
func printCards(w io.Writer, cards []models.Card) {
	for _, c := range cards {
		id := c.ID
		if !c.Navigable {
			id = "-"
		}
		line := fmt.Sprintf("  %-36s  %-30s  %-12s  %12s  %d bd  %s",
			id, c.Title, c.Area, formatRent(c.Rent), c.Bedrooms, statusLabel(c.Status))
		if c.Muted {
			line += "  (not open)"
		}
		fmt.Fprintln(w, line)
	}
}

func printDetail(w io.Writer, d *models.Detail) {
	fmt.Fprintf(w, "%s  [%s]\n", d.Title, d.StatusLabel)
	fmt.Fprintf(w, "  Rent:      %s\n", formatRent(d.Rent))
	fmt.Fprintf(w, "  Bedrooms:  %d\n", d.Bedrooms)
	fmt.Fprintf(w, "  Area:      %s\n", d.Area)
	fmt.Fprintf(w, "  Address:   %s\n", d.Address)
	if d.MapURL != "" {
		fmt.Fprintf(w, "  Map:       %s\n", d.MapURL)
	}
	fmt.Fprintf(w, "  Owner:     %s\n", d.OwnerName)
	fmt.Fprintf(w, "  Contact:   %s\n", d.Contact)
	fmt.Fprintf(w, "  Listed:    %s\n", d.CreatedAt.Format("2006-01-02"))
	fmt.Fprintln(w, "  Description:")
	for _, line := range strings.Split(d.Description, "\n") {
		fmt.Fprintln(w, "    "+line)
	}
	for i, img := range d.Images {
		fmt.Fprintf(w, "  Image %d:   %s\n", i+1, img)
	}
	if d.IsOwner {
		fmt.Fprintf(w, "  You own this listing: 'edit %s', 'status %s' (%s), 'delete %s'\n",
			d.ID, d.ID, d.ToggleLabel, d.ID)
	}
}

func printAccount(w io.Writer, acc *models.Account) {
	fmt.Fprintf(w, "Name:   %s\n", acc.Name)
	fmt.Fprintf(w, "Email:  %s\n", acc.Email)
	fmt.Fprintf(w, "Role:   %s\n", acc.Role)
	if acc.PhotoURL != "" {
		fmt.Fprintf(w, "Photo:  %s\n", acc.PhotoURL)
	}
	if !acc.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Since:  %s\n", acc.CreatedAt.Format("2006-01-02"))
	}
}
