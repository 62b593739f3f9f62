package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
)

func (a *App) Home(ctx context.Context) error {
	v, err := a.api.Home(ctx)
	if err != nil {
		return err
	}

	if v.Stats != nil {
		fmt.Fprintf(a.out, "Your listings: %d total, %d available, %d rented\n",
			v.Stats.Total, v.Stats.Available, v.Stats.Rented)
	}
	if len(v.Featured) > 0 {
		fmt.Fprintln(a.out, "Featured:")
		printCards(a.out, v.Featured)
	}
	if v.Stats == nil && len(v.Featured) == 0 {
		fmt.Fprintln(a.out, "Find your next home. Use 'login' or 'register' to get started.")
	}
	return nil
}

// Browse lists every listing without filtering.
func (a *App) Browse(ctx context.Context) error {
	v, err := a.api.Browse(ctx)
	if err != nil {
		return err
	}
	if len(v.Results) == 0 {
		fmt.Fprintln(a.out, "No houses listed yet.")
		return nil
	}
	fmt.Fprintf(a.out, "%d houses (use 'search' to filter):\n", len(v.Results))
	printCards(a.out, v.Results)
	return nil
}

// Search prompts for the criteria. Blank answers mean "any".
func (a *App) Search(ctx context.Context) error {
	var p models.SearchParams
	var err error

	if p.MinRent, err = GetSimpleText(a.reader, "Min rent (blank for any)", a.out); err != nil {
		return err
	}
	if p.MaxRent, err = GetSimpleText(a.reader, "Max rent (blank for any)", a.out); err != nil {
		return err
	}
	if p.Bedrooms, err = GetSimpleText(a.reader, "Bedrooms (blank for any)", a.out); err != nil {
		return err
	}
	if p.Area, err = a.askArea(ctx, "Area (blank for any)"); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Searching...")
	v, err := a.api.Search(ctx, p)
	if err != nil {
		return err
	}
	if v.State == models.StateEmpty || len(v.Results) == 0 {
		fmt.Fprintln(a.out, "No houses match your search.")
		return nil
	}
	fmt.Fprintf(a.out, "%d matching houses:\n", len(v.Results))
	printCards(a.out, v.Results)
	return nil
}

// askArea shows the known areas and reads one. The answer is passed through
// as typed.
func (a *App) askArea(ctx context.Context, prompt string) (string, error) {
	if areas, err := a.api.Areas(ctx); err == nil && len(areas) > 0 {
		prompt += " [" + strings.Join(areas, ", ") + "]"
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

// Mine is the owner dashboard.
func (a *App) Mine(ctx context.Context) error {
	d, err := a.api.Dashboard(ctx)
	if err != nil {
		return err
	}
	if len(d.Listings) == 0 {
		fmt.Fprintln(a.out, "You have no listings yet. Use 'add' to create one.")
		return nil
	}
	fmt.Fprintf(a.out, "Your %d listings:\n", len(d.Listings))
	printCards(a.out, d.Listings)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	acc, err := a.api.Profile(ctx)
	if err != nil {
		return err
	}
	printAccount(a.out, acc)
	return nil
}

// listingID takes the id from args or asks for it.
func (a *App) listingID(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := GetSimpleText(a.reader, "Listing id", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", common.Validationf("listing id is required")
	}
	return id, nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.listingID(args)
	if err != nil {
		return err
	}
	d, err := a.api.Detail(ctx, id)
	if err != nil {
		return err
	}
	printDetail(a.out, d)
	return nil
}

// Add prompts for a new listing and its image files.
func (a *App) Add(ctx context.Context) error {
	var in models.ListingInput

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Title", &in.Title},
		{"Monthly rent", &in.Rent},
		{"Bedrooms", &in.Bedrooms},
	}
	for _, p := range prompts {
		v, err := GetSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	area, err := a.askArea(ctx, "Area")
	if err != nil {
		return err
	}
	in.Area = area

	prompts = []struct {
		label string
		dst   *string
	}{
		{"Address", &in.Address},
		{"Map link (optional)", &in.LocationURL},
		{"Contact", &in.Contact},
	}
	for _, p := range prompts {
		v, err := GetSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}

	paths, err := GetLines(a.reader, "Image paths, one per line", a.out)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return common.Validationf("at least one image is required")
	}
	images, err := filex.ReadFiles(paths, 0)
	if err != nil {
		return err
	}

	id, err := a.api.AddHouse(ctx, in, images)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Listing %s created.\n", id)
	return a.Mine(ctx)
}

// Edit shows the current values and asks for new ones. A blank answer keeps
// the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.listingID(args)
	if err != nil {
		return err
	}
	v, err := a.api.EditView(ctx, id)
	if err != nil {
		return err
	}
	l := v.Listing

	var p models.ListingPatch

	text := []struct {
		label   string
		current string
		dst     **string
	}{
		{"Title", l.Title, &p.Title},
		{"Area", l.Area, &p.Area},
		{"Address", l.Address, &p.Address},
		{"Map link", l.LocationURL, &p.LocationURL},
		{"Contact", l.Contact, &p.Contact},
		{"Description", l.Description, &p.Description},
	}
	for _, f := range text {
		s, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, f.current), a.out)
		if err != nil {
			return err
		}
		if s != "" && s != f.current {
			*f.dst = &s
		}
	}

	rent, err := GetSimpleText(a.reader, fmt.Sprintf("Monthly rent [%.0f]", l.Rent), a.out)
	if err != nil {
		return err
	}
	if rent != "" {
		r, err := strconv.ParseFloat(rent, 64)
		if err != nil {
			return common.Validationf("rent must be a number")
		}
		p.Rent = &r
	}

	bedrooms, err := GetSimpleText(a.reader, fmt.Sprintf("Bedrooms [%d]", l.Bedrooms), a.out)
	if err != nil {
		return err
	}
	if bedrooms != "" {
		b, err := strconv.Atoi(bedrooms)
		if err != nil {
			return common.Validationf("bedrooms must be a whole number")
		}
		p.Bedrooms = &b
	}

	if p.Empty() {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}

	updated, err := a.api.UpdateHouse(ctx, id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Listing %s updated.\n", updated.ID)
	return nil
}

// Status sets the status given as the second argument, or toggles it.
func (a *App) Status(ctx context.Context, args []string) error {
	id, err := a.listingID(args)
	if err != nil {
		return err
	}

	var status models.ListingStatus
	if len(args) > 1 {
		status = models.ListingStatus(strings.ToLower(args[1]))
		if status != models.StatusAvailable && status != models.StatusRented {
			return common.Validationf("status must be available or rented")
		}
	}

	v, err := a.api.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Listing %s is now %s.\n", id, statusLabel(v.Status))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.listingID(args)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete listing %s? This cannot be undone.", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.api.DeleteHouse(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Listing %s deleted.\n", id)
	return a.Mine(ctx)
}
