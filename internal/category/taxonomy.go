package category

// DefaultTaxonomy is the stock cookie taxonomy used when a corpus ships
// without its own category table.
func DefaultTaxonomy() map[string][]string {
	return map[string][]string{
		"flour": {
			"all purpose flour",
			"bread flour",
			"cake flour",
			"wheat flour",
			"brown rice flour",
		},
		"fat": {
			"butter",
			"shortening",
			"margarine",
			"vegetable oil",
		},
		"sugar": {
			"sugar",
			"brown sugar",
		},
		"eggs": {
			"egg",
		},
		"leavening": {
			"baking soda",
			"baking powder",
		},
		"liquid": {
			"milk",
			"water",
			"sour cream",
		},
		"flavoring": {
			"vanilla",
			"almond extract",
			"coconut extract",
		},
		"addins": {
			"chocolate chip",
			"walnut",
			"pecan",
			"oat",
			"raisins",
			"nuts",
		},
	}
}
