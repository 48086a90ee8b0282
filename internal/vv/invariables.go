//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

import (
	"time"
)

var (
	LaunchTime = time.Now()

	// TagCategories - every entity category the tagger may emit
	TagCategories = []string{"ORGANISM", "DISEASE", "DISEASEALT", "GENE", "DRUG", "ANATOMY", "LOC", "PHENOTYPE",
		"HEALTHCARE", "PROCESS", "DIAGNOSTICS"}

	// TagWhitelist - the categories shown unless the user asks otherwise
	TagWhitelist = []string{"ORGANISM", "DISEASE", "GENE", "DRUG", "ANATOMY", "LOC"}

	// ModelTypes - the wego models we know how to train
	ModelTypes = []string{"w2v", "glove", "lexvec"}

	// CorpusStores - where corpora can be read from
	CorpusStores = []string{"json", "sqlite", "pgsql"}
)

// TESTSTRING - sample text offered on the query and terminology forms
const TESTSTRING = `Asthma is a common long-term inflammatory disease of the airways of the lungs. It is characterized by
variable and recurring symptoms, reversible airflow obstruction, and easily triggered bronchospasms. Treatment with
inhaled corticosteroids such as budesonide reduces eosinophil counts in the bronchial mucosa of children.`
