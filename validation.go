package motors

import (
	"context"
	"math"
	"net/url"
	"regexp"

	"github.com/jimiolaniyan/gomotors/validation"
)

const (
	fieldClassificationName = "classification_name"
	fieldClassificationID   = "classification_id"
	fieldMake               = "inv_make"
	fieldModel              = "inv_model"
	fieldYear               = "inv_year"
	fieldDescription        = "inv_description"
	fieldImage              = "inv_image"
	fieldThumbnail          = "inv_thumbnail"
	fieldPrice              = "inv_price"
	fieldMiles              = "inv_miles"
	fieldColor              = "inv_color"
	fieldTerm               = "term"
)

const (
	msgClassificationRequired = "Classification name is required."
	msgClassificationPattern  = "Classification name may not contain spaces or special characters (letters and numbers only)."
	msgChooseClassification   = "Please choose a classification."
	msgMake                   = "Please provide a vehicle make."
	msgModel                  = "Please provide a vehicle model."
	msgDescription            = "Please provide a description."
	msgYear                   = "Year must be a 4-digit number."
	msgPrice                  = "Price must be a positive number."
	msgMiles                  = "Miles must be a whole number, digits only."
	msgColor                  = "Please provide a color."
	msgImage                  = "Image path is required."
	msgThumbnail              = "Thumbnail image path is required."
	msgSearchTerm             = "Please enter a search term."
)

// Column limits of inventory.inv_miles (INTEGER) and inventory.inv_price
// (NUMERIC(12,2)).
const (
	maxMiles   = math.MaxInt32
	priceLimit = 1e10
)

var (
	classificationNameRegexp = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	yearRegexp               = regexp.MustCompile(`^\d{4}$`)
)

// lettersAndDigits leaves an empty name to the required rule so a blank
// submission reports one problem, not two.
func lettersAndDigits(_ context.Context, value string, _ url.Values) (bool, error) {
	return value == "" || classificationNameRegexp.MatchString(value), nil
}

func ClassificationValidator() *validation.Validator {
	return validation.New("add-classification",
		validation.Field(fieldClassificationName, validation.Present(), msgClassificationRequired),
		validation.Field(fieldClassificationName, lettersAndDigits, msgClassificationPattern),
	).Trimming(fieldClassificationName)
}

func VehicleValidator() *validation.Validator {
	return validation.New("add-vehicle",
		validation.Field(fieldClassificationID, validation.Present(), msgChooseClassification),
		validation.Field(fieldMake, validation.Present(), msgMake),
		validation.Field(fieldModel, validation.Present(), msgModel),
		validation.Field(fieldDescription, validation.Present(), msgDescription),
		validation.Field(fieldYear, validation.Matches(yearRegexp), msgYear),
		validation.Field(fieldPrice, validation.PositiveNumber(priceLimit), msgPrice),
		validation.Field(fieldMiles, validation.WholeNumber(maxMiles), msgMiles),
		validation.Field(fieldColor, validation.Present(), msgColor),
		validation.Field(fieldImage, validation.Present(), msgImage),
		validation.Field(fieldThumbnail, validation.Present(), msgThumbnail),
	).Trimming(fieldClassificationID, fieldMake, fieldModel, fieldDescription, fieldYear,
		fieldPrice, fieldMiles, fieldColor, fieldImage, fieldThumbnail)
}

func SearchValidator() *validation.Validator {
	return validation.New("search",
		validation.Field(fieldTerm, validation.Present(), msgSearchTerm),
	).Trimming(fieldTerm)
}
