package draftgt

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultClasses are the class names of the airport ground support equipment
// model, in the order the model was trained on
var DefaultClasses = []string{
	"Galley_Truck",
	"GSE",
	"Ground_Crew",
	"airplane",
}

// Classes is the class vocabulary of a detection model.  The class ID of a
// detection is the index of its name.
type Classes []string

// LoadClasses reads the labels used to train the Model from the given text
// file.  It should contain one label per line, blank lines are skipped.
func LoadClasses(file string) (Classes, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var classes Classes

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		classes = append(classes, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(classes) == 0 {
		return nil, fmt.Errorf("no labels found in %s", file)
	}

	return classes, nil
}

// Name returns the class name for id, or "class_<id>" when id is outside
// of the vocabulary
func (c Classes) Name(id int) string {

	if id < 0 || id >= len(c) {
		return fmt.Sprintf("class_%d", id)
	}

	return c[id]
}

// IDs resolves a comma delimited list of class names to class IDs, eg:
// "GSE, Ground_Crew".  Names are matched case insensitively.
func (c Classes) IDs(list string) ([]int, error) {

	var ids []int

	for _, word := range strings.Split(list, ",") {

		trimmed := strings.TrimSpace(word)

		if trimmed == "" {
			continue
		}

		found := false

		for id, name := range c {
			if strings.EqualFold(name, trimmed) {
				ids = append(ids, id)
				found = true
				break
			}
		}

		if !found {
			return nil, fmt.Errorf("unknown class %q, known classes: %s",
				trimmed, strings.Join(c, ", "))
		}
	}

	return ids, nil
}
