package cobertura

import "encoding/xml"

// The XML shape of a Cobertura report. Only the attributes the parser uses are mapped.

type coverageXML struct {
	XMLName   xml.Name    `xml:"coverage"`
	Timestamp string      `xml:"timestamp,attr"`
	Sources   sourcesXML  `xml:"sources"`
	Packages  packagesXML `xml:"packages"`
}

type sourcesXML struct {
	Source []string `xml:"source"`
}

type packagesXML struct {
	Package []packageXML `xml:"package"`
}

type packageXML struct {
	Name    string     `xml:"name,attr"`
	Classes classesXML `xml:"classes"`
}

type classesXML struct {
	Class []classXML `xml:"class"`
}

type classXML struct {
	Name     string     `xml:"name,attr"`
	Filename string     `xml:"filename,attr"`
	Methods  methodsXML `xml:"methods"`
	Lines    linesXML   `xml:"lines"`
}

type methodsXML struct {
	Method []methodXML `xml:"method"`
}

type methodXML struct {
	Name       string   `xml:"name,attr"`
	Signature  string   `xml:"signature,attr"`
	Complexity string   `xml:"complexity,attr"`
	Lines      linesXML `xml:"lines"`
}

type linesXML struct {
	Line []lineXML `xml:"line"`
}

type lineXML struct {
	Number            string        `xml:"number,attr"`
	Hits              string        `xml:"hits,attr"`
	Branch            string        `xml:"branch,attr"`
	ConditionCoverage string        `xml:"condition-coverage,attr"`
	Conditions        conditionsXML `xml:"conditions"`
}

type conditionsXML struct {
	Condition []conditionXML `xml:"condition"`
}

type conditionXML struct {
	Number   string `xml:"number,attr"`
	Type     string `xml:"type,attr"`
	Coverage string `xml:"coverage,attr"`
}
