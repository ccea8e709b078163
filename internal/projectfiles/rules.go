package projectfiles

import (
	"strings"
)

const (
	subdirectoriesVariableConstant = "SUBDIRS"
	assignmentPrefixConstant       = "SUBDIRS ="
	lineContinuationConstant       = `\`
	lineBreakConstant              = "\n"
	carriageReturnConstant         = "\r"
)

var assignmentOperators = []string{"+=", ":=", "?=", "="}

// rulesDocument is a parsed Rules.mk: its lines and the location of the SUBDIRS assignment.
type rulesDocument struct {
	lines           []string
	assignmentStart int
	assignmentEnd   int
	hasAssignment   bool
	entries         []string
}

// parseRules locates the first SUBDIRS assignment, following backslash continuations.
func parseRules(content string) rulesDocument {
	normalized := strings.ReplaceAll(content, carriageReturnConstant+lineBreakConstant, lineBreakConstant)
	normalized = strings.TrimSuffix(normalized, lineBreakConstant)

	document := rulesDocument{}
	if len(normalized) > 0 {
		document.lines = strings.Split(normalized, lineBreakConstant)
	}

	for lineIndex, line := range document.lines {
		value, isAssignment := assignmentValue(line)
		if !isAssignment {
			continue
		}

		valueParts := []string{}
		endIndex := lineIndex
		for {
			trimmedValue := strings.TrimRight(value, " \t")
			continued := strings.HasSuffix(trimmedValue, lineContinuationConstant)
			valueParts = append(valueParts, strings.TrimSuffix(trimmedValue, lineContinuationConstant))
			if !continued || endIndex+1 >= len(document.lines) {
				break
			}
			endIndex++
			value = document.lines[endIndex]
		}

		document.hasAssignment = true
		document.assignmentStart = lineIndex
		document.assignmentEnd = endIndex + 1
		document.entries = strings.Fields(strings.Join(valueParts, " "))
		return document
	}

	return document
}

func assignmentValue(line string) (string, bool) {
	remainder, hasVariable := strings.CutPrefix(strings.TrimLeft(line, " \t"), subdirectoriesVariableConstant)
	if !hasVariable {
		return "", false
	}
	remainder = strings.TrimLeft(remainder, " \t")
	for _, operator := range assignmentOperators {
		if value, hasOperator := strings.CutPrefix(remainder, operator); hasOperator {
			return value, true
		}
	}
	return "", false
}

// render rewrites the SUBDIRS assignment with entries, appending one when the file had none.
func (document rulesDocument) render(entries []string) string {
	assignmentLine := strings.TrimRight(assignmentPrefixConstant+" "+strings.Join(entries, " "), " ")

	var renderedLines []string
	if document.hasAssignment {
		renderedLines = append(renderedLines, document.lines[:document.assignmentStart]...)
		renderedLines = append(renderedLines, assignmentLine)
		renderedLines = append(renderedLines, document.lines[document.assignmentEnd:]...)
	} else {
		renderedLines = append(renderedLines, document.lines...)
		renderedLines = append(renderedLines, assignmentLine)
	}
	return strings.Join(renderedLines, lineBreakConstant) + lineBreakConstant
}
