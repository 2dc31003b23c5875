package catalog

// jeeMain is the JEE Main syllabus grouped the way the selection form
// presents it.
var jeeMain = []Subject{
	{
		Name: "Physics",
		Subcategories: []Subcategory{
			{Name: "Mechanics", Chapters: []string{
				"Physics and Measurement",
				"Kinematics",
				"Laws of Motion",
				"Work, Energy and Power",
				"Rotational Motion",
				"Gravitation",
				"Properties of Solids and Liquids",
			}},
			{Name: "Thermodynamics and Kinetic Theory", Chapters: []string{
				"Thermodynamics",
				"Kinetic Theory of Gases",
			}},
			{Name: "Oscillations and Waves", Chapters: []string{
				"Oscillation and Waves",
			}},
			{Name: "Electromagnetism", Chapters: []string{
				"Electrostatics",
				"Current Electricity",
				"Magnetic Effect of Current and Magnetism",
				"Electromagnetic Induction and Alternating Current",
				"Electromagnetic Waves",
			}},
			{Name: "Optics", Chapters: []string{
				"Optics",
			}},
			{Name: "Modern Physics", Chapters: []string{
				"Dual Nature of Matter and Radiation",
				"Atoms and Nuclei",
				"Electronic Devices",
			}},
		},
	},
	{
		Name: "Chemistry",
		Subcategories: []Subcategory{
			{Name: "Physical Chemistry", Chapters: []string{
				"Some Basic Concepts in Chemistry",
				"Atomic Structure",
				"Chemical Bonding and Molecular Structure",
				"Chemical Thermodynamics",
				"Solutions",
				"Equilibrium",
				"Redox Reactions and Electrochemistry",
				"Chemical Kinetics",
			}},
			{Name: "Inorganic Chemistry", Chapters: []string{
				"Classification of Elements and Periodicity in Properties",
				"p-block elements",
				"d- and f-block elements",
				"Coordination Compounds",
			}},
			{Name: "Organic Chemistry", Chapters: []string{
				"Purification and Characterization of Organic Compounds",
				"Some Basic Principles of Organic Chemistry",
				"Hydrocarbons",
				"Organic Compounds containing Halogen",
				"Organic Compounds containing Oxygen",
				"Organic Compounds containing Nitrogen",
				"Biomolecules",
			}},
		},
	},
	{
		Name: "Mathematics",
		Subcategories: []Subcategory{
			{Name: "Algebra", Chapters: []string{
				"Sets, Relations and Functions",
				"Complex Numbers and Quadratic Equations",
				"Matrices and Determinants",
				"Permutations and Combinations",
				"Binomial Theorem and its Simple Applications",
				"Sequences and Series",
			}},
			{Name: "Calculus", Chapters: []string{
				"Limit, Continuity and Differentiability",
				"Integral Calculus",
				"Differential Equations",
			}},
			{Name: "Coordinate Geometry", Chapters: []string{
				"Coordinate Geometry",
				"Three Dimensional Geometry",
			}},
			{Name: "Vector Algebra", Chapters: []string{
				"Vector Algebra",
			}},
			{Name: "Statistics and Probability", Chapters: []string{
				"Statistics and Probability",
			}},
			{Name: "Trigonometry", Chapters: []string{
				"Trigonometry",
			}},
		},
	},
}

var defaultCatalog *Catalog

func init() {
	c, err := New(jeeMain)
	if err != nil {
		panic("catalog: invalid seed data: " + err.Error())
	}
	defaultCatalog = c
}
