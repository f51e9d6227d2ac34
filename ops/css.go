package ops

// Baseline stylesheet shared by every content document. Reading systems
// vary widely in CSS support, so this keeps to safe, widely honored rules.
const defaultCSS = `body {
    font-family: serif;
    margin: 1em;
}

h1.article-title {
    font-size: 1.6em;
    text-align: center;
}

h3.authors {
    font-weight: normal;
    text-align: center;
}

div.affiliations {
    font-size: 0.85em;
    text-align: center;
}

div.abstract, div.editors-summary {
    margin: 1em 0;
}

div.figure-caption, div.table-caption {
    font-size: 0.9em;
    margin: 0.5em 0;
}

img.figure, img.table {
    max-width: 100%;
}

div.disp-quote {
    margin: 1em 2em;
}

div.boxed-text {
    border: 1px solid black;
    margin: 1em 0;
    padding: 0.5em;
}

p.verse-line {
    font-style: italic;
    margin: 0;
}

ul.simple {
    list-style-type: none;
}

p.def-item-term {
    font-weight: bold;
    margin-bottom: 0;
}

p.def-item-def {
    margin-top: 0;
    margin-left: 2em;
}

span.heading-deep {
    font-weight: bold;
}

div.table-wrap-foot {
    font-size: 0.85em;
}

span.inline-formula, span.disp-formula {
    font-style: italic;
}
`
