package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type SolidTag struct{}

var SolidTagComponent = NewComponent[SolidTag]()
