package store

// OpenML error codes reported by the service.
const (
	CodeAuthenticationFailed = 103
	CodeAdminRequired        = 104

	CodeUnknownDataset      = 111
	CodeDataFileMissing     = 130
	CodeDataDescription     = 131
	CodeDataFileUnreadable  = 132
	CodeDataURLFetchFailed  = 133
	CodeUnknownTask         = 151
	CodeTaskDescription     = 152
	CodeTaskSourceData      = 153
	CodeTaskDuplicate       = 614
	CodeRunDescription      = 203
	CodeRunUnknownTask      = 204
	CodeRunOutputUnreadable = 212
	CodeRunUnknown          = 236
	CodeNoFeatures          = 272
	CodeDataDeleteUnknown   = 352
	CodeDataDeleteForbidden = 353
	CodeDataDeleteInUse     = 354
	CodeIllegalFilter       = 370
	CodeDataNoResults       = 372
	CodeRunDeleteUnknown    = 392
	CodeRunDeleteForbidden  = 393
	CodeTaskDeleteUnknown   = 452
	CodeTaskDeleteForbidden = 453
	CodeTaskDeleteInUse     = 454
	CodeTagAlreadyPresent   = 472
	CodeTagEntityUnknown    = 473
	CodeTagNotFound         = 475
	CodeRunListFilter       = 510
	CodeRunNoResults        = 512
	CodeRunAttachUnknown    = 530
	CodeRunAttachForbidden  = 531
	CodeRunAttachUnreadable = 532
	CodeNoUnprocessed       = 681
	CodeStatusUnknownData   = 691
	CodeStatusInvalid       = 692
	CodeStatusForbidden     = 693
	CodeNoPendingRuns       = 1002
)
