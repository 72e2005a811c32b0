package memory

import "github.com/samirrijal/ecobin/internal/core/domain"

// Fixture returns the built-in catalog of collection points. Each call
// returns a fresh copy.
func Fixture() []domain.Bin {
	out := make([]domain.Bin, len(fixture))
	for i, b := range fixture {
		b.AcceptedItems = append([]string(nil), b.AcceptedItems...)
		out[i] = b
	}
	return out
}

var fixture = []domain.Bin{
	{
		ID: "1", Name: "Green Tech Recyclers", Area: "Koramangala", City: "Bangalore", Pincode: "560034",
		Address: "123 HSR Layout, Koramangala, Bangalore", Lat: 12.9352, Lng: 77.6245,
		AcceptedItems:  []string{"Laptops", "Mobile Phones", "Tablets", "Chargers", "Batteries"},
		OperatingHours: "Mon-Sat: 9AM - 6PM", Contact: "+91 98765 43210", Status: domain.BinStatusActive,
	},
	{
		ID: "2", Name: "EcoWaste Hub", Area: "Indiranagar", City: "Bangalore", Pincode: "560038",
		Address: "456 100 Feet Road, Indiranagar, Bangalore", Lat: 12.9784, Lng: 77.6408,
		AcceptedItems:  []string{"Computers", "Monitors", "Printers", "Keyboards", "Mouse"},
		OperatingHours: "Mon-Fri: 10AM - 7PM", Contact: "+91 98765 43211", Status: domain.BinStatusActive,
	},
	{
		ID: "3", Name: "RecycleIT Mumbai", Area: "Andheri West", City: "Mumbai", Pincode: "400053",
		Address: "789 Link Road, Andheri West, Mumbai", Lat: 19.1362, Lng: 72.8296,
		AcceptedItems:  []string{"TVs", "Refrigerators", "Air Conditioners", "Washing Machines"},
		OperatingHours: "Daily: 8AM - 8PM", Contact: "+91 98765 43212", Status: domain.BinStatusActive,
	},
	{
		ID: "4", Name: "Digital Dispose", Area: "Bandra", City: "Mumbai", Pincode: "400050",
		Address: "321 Hill Road, Bandra, Mumbai", Lat: 19.0596, Lng: 72.8295,
		AcceptedItems:  []string{"Mobile Phones", "Tablets", "Smartwatches", "Earphones"},
		OperatingHours: "Mon-Sat: 9AM - 5PM", Contact: "+91 98765 43213", Status: domain.BinStatusActive,
	},
	{
		ID: "5", Name: "E-Cycle Delhi", Area: "Connaught Place", City: "Delhi", Pincode: "110001",
		Address: "555 Janpath, Connaught Place, Delhi", Lat: 28.6315, Lng: 77.2167,
		AcceptedItems:  []string{"All Electronics", "Batteries", "Cables", "Adapters"},
		OperatingHours: "Daily: 10AM - 9PM", Contact: "+91 98765 43214", Status: domain.BinStatusActive,
	},
	{
		ID: "6", Name: "GreenBytes", Area: "Nehru Place", City: "Delhi", Pincode: "110019",
		Address: "888 Nehru Place Market, Delhi", Lat: 28.5494, Lng: 77.2529,
		AcceptedItems:  []string{"Computers", "Laptops", "Hard Drives", "RAM", "Graphics Cards"},
		OperatingHours: "Mon-Sat: 11AM - 8PM", Contact: "+91 98765 43215", Status: domain.BinStatusActive,
	},
	{
		ID: "7", Name: "TechRecycle Chennai", Area: "T Nagar", City: "Chennai", Pincode: "600017",
		Address: "222 Pondy Bazaar, T Nagar, Chennai", Lat: 13.0418, Lng: 80.2341,
		AcceptedItems:  []string{"Mobile Phones", "Laptops", "Cameras", "Gaming Consoles"},
		OperatingHours: "Daily: 9AM - 7PM", Contact: "+91 98765 43216", Status: domain.BinStatusActive,
	},
	{
		ID: "8", Name: "EcoElectronics Pune", Area: "Koregaon Park", City: "Pune", Pincode: "411001",
		Address: "444 North Main Road, Koregaon Park, Pune", Lat: 18.5362, Lng: 73.8940,
		AcceptedItems:  []string{"All Electronics", "Appliances", "Batteries"},
		OperatingHours: "Mon-Fri: 9AM - 6PM", Contact: "+91 98765 43217", Status: domain.BinStatusActive,
	},
	{
		ID: "9", Name: "Smart Waste Hyderabad", Area: "Hitech City", City: "Hyderabad", Pincode: "500081",
		Address: "666 Cyber Towers, Hitech City, Hyderabad", Lat: 17.4474, Lng: 78.3762,
		AcceptedItems:  []string{"Servers", "Networking Equipment", "UPS", "Printers"},
		OperatingHours: "Mon-Sat: 10AM - 7PM", Contact: "+91 98765 43218", Status: domain.BinStatusActive,
	},
	{
		ID: "10", Name: "RecycleZone Kolkata", Area: "Salt Lake", City: "Kolkata", Pincode: "700091",
		Address: "999 Sector V, Salt Lake, Kolkata", Lat: 22.5726, Lng: 88.4344,
		AcceptedItems:  []string{"Computers", "Monitors", "Keyboards", "Speakers"},
		OperatingHours: "Daily: 8AM - 6PM", Contact: "+91 98765 43219", Status: domain.BinStatusActive,
	},
}
