//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	CONFIGVECTORSTOPS  = "sgs-stops-english.json"
	CONFIGVECTORW2V    = "sgs-vector-conf-w2v.json"
	CONFIGVECTORGLOVE  = "sgs-vector-conf-glove.json"
	CONFIGVECTORLEXVEC = "sgs-vector-conf-lexvec.json"
	CLUSTERCOUNT       = 4
	CLUSTERTOPTERMS    = 5
	CLUSTERMAXCELLS    = 40000 // heat map is built from a sample of the reorganised matrix
	DEFAULTCHRTWIDTH   = "1200px"
	DEFAULTCHRTHEIGHT  = "800px"
	KMEANSMAXITER      = 300
	MAXTOPICS          = 100
	SVMCOST            = 1.0
	SVMMAXITER         = 1000
	SVMTOLERANCE       = 1e-6
	SVMSEED            = 0
	TOPICCOUNT         = 20
	TOPICWORDCUTOFF    = 5
	VECTORDIMDEFAULT   = 100
	VECTORMODELDEFAULT = "w2v"
	VECTORNEIGHBORS    = 16
	VECTORSPACEDEFAULT = "topic"
)
