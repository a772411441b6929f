package tex2yaml

import (
	"regexp"
	"strings"
)

// Literal markers emitted by the generator. The parser-side regexps below
// must accept exactly what these produce.
const (
	BeginDocument = `\begin{document}`
	EndDocument   = `\end{document}`
	ClearPage     = `\clearpage`

	BeginParacol = `\begin{paracol}{2}`
	EndParacol   = `\end{paracol}`
	SwitchColumn = `\switchcolumn`

	SectionStar = `\section*`
)

// Custom environment names used by the resume style file.
const (
	EnvWorkExperience = "itemizeAcademic"
	EnvProject        = "itemizeAProject"
	EnvProjectsMain   = "itemizeProjMain"
	EnvSkillList      = "itemizeLL"
	EnvPersonality    = "itemizeMain"
	EnvItemize        = "itemize"
)

// Known preamble metadata field names (targets of \renewcommand).
const (
	FieldName    = "myname"
	FieldDate    = "mydate"
	FieldBrand   = "brand"
	FieldProfile = "ProfessionalProfile"
)

// colorFields lists the renewcommand names routed to the colors map
// instead of the generic fields map.
var colorFields = []string{
	"emphcolor",
	"topbarcolor",
	"leftbarcolor",
	"brandcolor",
	"namecolor",
}

// standardPackages are emitted by the preamble template and therefore not
// stored as custom package declarations when parsing.
var standardPackages = []string{
	"geometry",
	"paracol",
	"xcolor",
	"hyperref",
	"fontawesome5",
	"enumitem",
	"soul",
	"textpos",
	"etoolbox",
	"tikz",
}

func isStandardPackage(line string) bool {
	for _, pkg := range standardPackages {
		if strings.Contains(line, "{"+pkg+"}") {
			return true
		}
	}
	return false
}

// Precompiled document-structure patterns.
var (
	beginDocumentRe = regexp.MustCompile(`\\begin\{document\}`)
	endDocumentRe   = regexp.MustCompile(`\\end\{document\}`)
	clearPageRe     = regexp.MustCompile(`\\clearpage\s*`)

	beginParacolRe = regexp.MustCompile(`\\begin\{paracol\}\{2\}`)
	endParacolRe   = regexp.MustCompile(`\\end\{paracol\}`)
	switchColumnRe = regexp.MustCompile(`\\switchcolumn`)

	// Section header: \section*{ - the name itself needs balanced-brace
	// extraction because it may contain nested formatting commands.
	sectionStartRe = regexp.MustCompile(`\\section\*\{`)

	// Trailing \vspace{...} at the end of a section body.
	trailingVspaceRe = regexp.MustCompile(`\\vspace\{([^}]+)\}\s*$`)
)

// Preamble metadata patterns.
var (
	renewCommandRe = regexp.MustCompile(`\\renewcommand\{\\([A-Za-z]+)\}`)
	setLengthRe    = regexp.MustCompile(`\\setlength\{\\([A-Za-z]+)\}\{([^}]*)\}`)
	defLenRe       = regexp.MustCompile(`\\deflen\{([A-Za-z]+)\}\{([^}]*)\}`)
	setHLColorRe   = regexp.MustCompile(`\\sethlcolor\{([^}]*)\}`)
	nlinesPPRe     = regexp.MustCompile(`\\def\\nlinesPP\{(\d+)\}`)
	titleToggleRe  = regexp.MustCompile(`\\toggle(true|false)\{list_title_after_name\}`)
	usePackageRe   = regexp.MustCompile(`\\usepackage(?:\[[^\]]*\])?\{[^}]+\}`)
	fontFamilyRe   = regexp.MustCompile(`\\newfontfamily\\[A-Za-z]+(?:\[[^\]]*\])?\{[^}]+\}`)
)

// Section type-inference signals, checked in order from most to least
// specific (see parseSectionByInference).
var (
	beginProjMainRe  = regexp.MustCompile(`\\begin\{itemizeProjMain\}`)
	beginAcademicRe  = regexp.MustCompile(`\\begin\{itemizeAcademic\}`)
	beginItemizeRe   = regexp.MustCompile(`\\begin\{itemize\}`)
	beginItemizeAny  = regexp.MustCompile(`\\begin\{itemize[A-Za-z]+\}`)
	beginMainRe      = regexp.MustCompile(`\\begin\{itemizeMain\}`)
	itemBracketRe    = regexp.MustCompile(`\\item\[`)
	capsListSignalRe = regexp.MustCompile(`\\setlength\{\\baselineskip\}`)
	scshapeRe        = regexp.MustCompile(`\\scshape`)
	universitySignal = "University of Rochester"
	iconBulletRe     = regexp.MustCompile(`\\item\[\\fa[A-Za-z]+\]`)
	dissertationWord = "Dissertation"
	minorWord        = "Minor in Neuroscience"
)

// Page decoration commands, absolutely positioned and handled apart from
// column content.
var (
	leftGradRe      = regexp.MustCompile(`\\leftgrad(?:\{[^}]*\})+`)
	bottomBarRe     = regexp.MustCompile(`\\bottombar(?:\{[^}]*\})+`)
	topGradTriRe    = regexp.MustCompile(`\\topgradtri(?:\{[^}]*\})+`)
	beginTextblock  = regexp.MustCompile(`\\begin\{textblock\*\}`)
	textblockArgsRe = regexp.MustCompile(`\\begin\{textblock\*\}(\{[^}]*\})(\([^)]*\))`)
	braceArgRe      = regexp.MustCompile(`\{([^}]*)\}`)
)

// Inline formatting wrappers stripped by Plaintext, in unwrap order.
var formattingWrappers = []string{
	"textbf",
	"textit",
	"emph",
	"underline",
	"texttt",
	"scshape",
	"coloremph",
	"textnormal",
}

// Standalone formatting commands removed entirely by Plaintext.
var standaloneCommands = []string{
	"centering",
	"par",
	"nolinebreak",
	"nopagebreak",
}

// Plaintext conversion patterns.
var (
	colorWithTextRe  = regexp.MustCompile(`\\color\{[^}]+\}\{([^}]*)\}`)
	colorAloneRe     = regexp.MustCompile(`\\color\{[^}]+\}`)
	spacingCommandRe = regexp.MustCompile(`\\[vh]space\{[^}]*\}`)
	anyCommandBraced = regexp.MustCompile(`\\[a-zA-Z]+\{[^}]*\}`)
	anyCommandBare   = regexp.MustCompile(`\\[a-zA-Z]+`)
	optionParamsRe   = regexp.MustCompile(`\[[^\]]*=[^\]]*\]`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
	blankLinesRe     = regexp.MustCompile(`\n{3,}`)
)
