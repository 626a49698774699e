package registry

// countryTable is the built-in set of issuing countries the product supports.
// Display names are Spanish because the verification flow is presented to a
// Spanish-speaking audience. Declaration order is the scan order used by the
// display-name fallback in text extraction, so entries must not be reordered
// casually.
var countryTable = []CountryRecord{
	{ISO3: "MEX", DisplayName: "México"},
	{ISO3: "USA", DisplayName: "Estados Unidos"},
	{ISO3: "CAN", DisplayName: "Canadá"},
	{ISO3: "BRA", DisplayName: "Brasil"},
	{ISO3: "ARG", DisplayName: "Argentina"},
	{ISO3: "ESP", DisplayName: "España"},
	{ISO3: "FRA", DisplayName: "Francia"},
	{ISO3: "DEU", DisplayName: "Alemania"},
	{ISO3: "ITA", DisplayName: "Italia"},
	{ISO3: "GBR", DisplayName: "Reino Unido"},
	{ISO3: "JPN", DisplayName: "Japón"},
	{ISO3: "KOR", DisplayName: "Corea del Sur"},
	{ISO3: "AUS", DisplayName: "Australia"},
	{ISO3: "CHN", DisplayName: "China"},
	{ISO3: "COL", DisplayName: "Colombia"},
	{ISO3: "PER", DisplayName: "Perú"},
	{ISO3: "CHL", DisplayName: "Chile"},
	{ISO3: "URY", DisplayName: "Uruguay"},
	{ISO3: "PRY", DisplayName: "Paraguay"},
	{ISO3: "ECU", DisplayName: "Ecuador"},
	{ISO3: "VEN", DisplayName: "Venezuela"},
	{ISO3: "CUB", DisplayName: "Cuba"},
	{ISO3: "DOM", DisplayName: "República Dominicana"},
	{ISO3: "PAN", DisplayName: "Panamá"},
	{ISO3: "GTM", DisplayName: "Guatemala"},
	{ISO3: "HND", DisplayName: "Honduras"},
	{ISO3: "SLV", DisplayName: "El Salvador"},
	{ISO3: "NIC", DisplayName: "Nicaragua"},
	{ISO3: "CRI", DisplayName: "Costa Rica"},
	{ISO3: "BOL", DisplayName: "Bolivia"},
	{ISO3: "PRT", DisplayName: "Portugal"},
	{ISO3: "NLD", DisplayName: "Países Bajos"},
	{ISO3: "BEL", DisplayName: "Bélgica"},
	{ISO3: "CHE", DisplayName: "Suiza"},
	{ISO3: "SWE", DisplayName: "Suecia"},
	{ISO3: "NOR", DisplayName: "Noruega"},
	{ISO3: "DNK", DisplayName: "Dinamarca"},
	{ISO3: "FIN", DisplayName: "Finlandia"},
	{ISO3: "IRL", DisplayName: "Irlanda"},
	{ISO3: "ISL", DisplayName: "Islandia"},
	{ISO3: "POL", DisplayName: "Polonia"},
	{ISO3: "CZE", DisplayName: "República Checa"},
	{ISO3: "AUT", DisplayName: "Austria"},
	{ISO3: "HUN", DisplayName: "Hungría"},
	{ISO3: "GRC", DisplayName: "Grecia"},
	{ISO3: "TUR", DisplayName: "Turquía"},
	{ISO3: "ISR", DisplayName: "Israel"},
	{ISO3: "ZAF", DisplayName: "Sudáfrica"},
	{ISO3: "NZL", DisplayName: "Nueva Zelanda"},
	{ISO3: "RUS", DisplayName: "Rusia"},
	{ISO3: "UKR", DisplayName: "Ucrania"},
	{ISO3: "IND", DisplayName: "India"},
}
